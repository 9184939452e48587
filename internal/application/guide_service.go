package application

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/alorle/stream-bridge/internal/channel"
	"github.com/alorle/stream-bridge/internal/epg"
	"github.com/alorle/stream-bridge/internal/metrics"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

// DefaultGeneratorName is written to the generator-info-name attribute.
const DefaultGeneratorName = "PPVBridgeService/1.0"

// GuideService renders the published snapshot as an XMLTV guide.
type GuideService struct {
	store         *snapshot.Store
	generatorName string
	filter        CategoryFilter
	logger        *slog.Logger
}

// NewGuideService creates a new GuideService.
func NewGuideService(store *snapshot.Store, generatorName string, filter CategoryFilter, logger *slog.Logger) *GuideService {
	if generatorName == "" {
		generatorName = DefaultGeneratorName
	}
	return &GuideService{
		store:         store,
		generatorName: generatorName,
		filter:        filter,
		logger:        logger,
	}
}

// GenerateXMLTV generates the guide document. Each channel identifier gets
// one channel record; programmes with a missing or invalid start or stop
// time are left out.
func (g *GuideService) GenerateXMLTV(ctx context.Context) ([]byte, error) {
	snap := g.store.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	guide := epg.NewGuide(g.generatorName)
	seen := make(map[string]struct{})

	for cat, st := range snap.Catalog().All() {
		if !g.filter.Allows(cat.Name) {
			continue
		}
		if !st.Usable() {
			g.logger.Warn("skipping stream without name", "category", cat.Name, "stream_id", st.ID)
			continue
		}

		id := channel.ForStream(st)
		if _, ok := seen[id]; !ok {
			ch, err := epg.NewChannel(id, st.Name, st.Poster)
			if err != nil {
				g.logger.Warn("skipping invalid channel", "stream", st.Name, "error", err)
				continue
			}
			guide.AddChannel(ch)
			seen[id] = struct{}{}
		}

		start, stop := epg.FormatTime(st.StartsAt), epg.FormatTime(st.EndsAt)
		if start == "" || stop == "" {
			g.logger.Warn("skipping programme without valid times",
				"stream", st.Name,
				"starts_at", string(st.StartsAt),
				"ends_at", string(st.EndsAt),
			)
			continue
		}

		p, err := epg.NewProgramme(epg.ProgrammeInfo{
			ChannelID:   id,
			Start:       start,
			Stop:        stop,
			Title:       st.Name,
			Description: st.Description(cat),
			Icon:        st.Poster,
			Category:    st.Category(cat),
		})
		if err != nil {
			g.logger.Warn("skipping invalid programme", "stream", st.Name, "error", err)
			continue
		}
		guide.AddProgramme(p)
	}

	var buf bytes.Buffer
	if err := guide.Encode(&buf); err != nil {
		return nil, err
	}

	g.logger.Info("generated guide", "channels", len(guide.Channels), "programmes", len(guide.Programmes))
	metrics.SetGuideProgrammes(len(guide.Programmes))
	return buf.Bytes(), nil
}
