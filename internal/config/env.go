package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envParser collects every invalid environment value instead of stopping at the first
type envParser struct {
	errors []string
}

func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '3h', etc.)", envName))
		return
	}

	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable, ensuring it's positive
func (p *envParser) parseInt(envName string, target *int) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be a valid integer", envName))
		return
	}

	if intVal <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = intVal
}

// parseRate parses a requests-per-second value; zero disables the limit
func (p *envParser) parseRate(envName string, target *float64) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be a number", envName))
		return
	}

	if rate < 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must not be negative", envName))
		return
	}

	*target = rate
}

// parseList parses a comma separated list, dropping blank items
func (p *envParser) parseList(envName string, target *[]string) {
	val, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	var items []string
	for item := range strings.SplitSeq(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*target = items
}

// parseEnum parses an enum environment variable from a set of valid values
func (p *envParser) parseEnum(envName string, target *string, validValues []string, normalize func(string) string) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	normalized := normalize(val)
	for _, v := range validValues {
		if v == normalized {
			*target = normalized
			return
		}
	}

	p.errors = append(p.errors, fmt.Sprintf("%s must be one of: %s", envName, strings.Join(validValues, ", ")))
}

func (p *envParser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(p.errors, "\n  - "))
}
