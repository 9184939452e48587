package application

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/channel"
	"github.com/alorle/stream-bridge/internal/m3u"
	"github.com/alorle/stream-bridge/internal/metrics"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

// GuidePath is where the guide is served, advertised in the playlist header.
const GuidePath = "/epg.xml"

// PlaylistService renders the published snapshot as an M3U playlist.
type PlaylistService struct {
	store      *snapshot.Store
	credential string
	baseURL    string
	filter     CategoryFilter
	logger     *slog.Logger
}

// NewPlaylistService creates a new PlaylistService. credential is only checked
// for presence: without it the cached playback URLs cannot be trusted.
// baseURL is the public address of the service; when empty the guide URL is
// built from the request host.
func NewPlaylistService(store *snapshot.Store, credential, baseURL string, filter CategoryFilter, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		store:      store,
		credential: credential,
		baseURL:    strings.TrimRight(baseURL, "/"),
		filter:     filter,
		logger:     logger,
	}
}

// GenerateM3U generates an M3U playlist from the published snapshot.
// Without a configured base URL, host is used to build the guide URL in the
// header; a malformed host leaves the header without one.
// Streams without a name or without a cached playback URL are skipped.
func (p *PlaylistService) GenerateM3U(ctx context.Context, host string) (string, error) {
	snap := p.store.Load()
	if snap == nil {
		return "", ErrNoSnapshot
	}
	if p.credential == "" {
		return "", catalog.ErrMissingCredential
	}

	var guideURLs []string
	if u, ok := p.guideURL(host); ok {
		guideURLs = []string{u}
	} else {
		p.logger.Warn("ignoring malformed host for guide url", "host", host)
	}
	enc := m3u.NewEncoder(guideURLs)

	for cat, st := range snap.Catalog().All() {
		if !p.filter.Allows(cat.Name) {
			continue
		}
		if !st.Usable() {
			p.logger.Warn("skipping stream without name", "category", cat.Name, "stream_id", st.ID)
			continue
		}

		url, ok := snap.PlaybackURL(st.ID)
		if !ok {
			p.logger.Warn("skipping stream without playback url", "stream", st.Name, "stream_id", st.ID)
			continue
		}

		enc.AddChannel(&m3u.Channel{
			Title:    st.Name,
			URI:      url,
			Duration: -1,
			TVGTags: &m3u.TVGTags{
				ID:         channel.ForStream(st),
				Name:       st.Name,
				Logo:       st.Poster,
				GroupTitle: cat.GroupTitle(),
			},
		})
	}

	var b strings.Builder
	if err := enc.Encode(&b); err != nil {
		return "", err
	}

	p.logger.Info("generated playlist", "entries", enc.Len())
	metrics.SetPlaylistEntries(enc.Len())
	return b.String(), nil
}

func (p *PlaylistService) guideURL(host string) (string, bool) {
	if p.baseURL != "" {
		return p.baseURL + GuidePath, true
	}
	if !validHost(host) {
		return "", false
	}
	return "http://" + host + GuidePath, true
}

// validHost accepts a host name, IPv4 or bracketed IPv6 address with an
// optional port.
func validHost(host string) bool {
	if host == "" {
		return false
	}
	for _, r := range host {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(".-_:[]", r) {
			return false
		}
	}
	return true
}
