package geo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

const (
	// CacheKey is the storage slot holding the last detected location.
	CacheKey = "geolocation"
	// CacheTTL is how long a detected location is reused before detecting again.
	CacheTTL = 24 * time.Hour
)

// Source records where a resolved coordinate came from.
type Source string

const (
	SourceConfig   Source = "config"
	SourceCache    Source = "cache"
	SourceDetected Source = "detected"
	SourceDefault  Source = "default"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Coordinate prayer.Coordinate
	Source     Source
	City       string
	Country    string
	// Timezone is the IANA zone reported by detection, if any.
	Timezone string
}

// cacheEntry stores a detected location with the time it was detected.
type cacheEntry struct {
	Location   Location  `json:"location"`
	DetectedAt time.Time `json:"detected_at"`
}

// Resolver picks a coordinate: configured > cached detection > live detection > default.
type Resolver struct {
	kv     storage.KV
	detect func(context.Context) (*Location, error)
	now    func() time.Time
	log    zerolog.Logger
}

// NewResolver returns a Resolver caching detections in kv. kv may be nil.
func NewResolver(kv storage.KV, log zerolog.Logger) *Resolver {
	return &Resolver{
		kv:     kv,
		detect: DetectLocation,
		now:    time.Now,
		log:    log.With().Str("component", "geo").Logger(),
	}
}

// Resolve never fails. A nil configured coordinate means none is configured.
func (r *Resolver) Resolve(ctx context.Context, configured *prayer.Coordinate) Resolution {
	if configured != nil {
		return Resolution{Coordinate: *configured, Source: SourceConfig}
	}

	if cached, fresh := r.loadCache(ctx); cached != nil && fresh {
		return resolutionFrom(cached.Location, SourceCache)
	}

	detected, err := r.detect(ctx)
	if err == nil {
		r.saveCache(ctx, detected)
		return resolutionFrom(*detected, SourceDetected)
	}

	// An expired detection is never reused: a failed lookup always means the default.
	r.log.Warn().Err(err).Msg("location detection failed, using default coordinate")
	return Resolution{Coordinate: prayer.DefaultCoordinate, Source: SourceDefault}
}

func resolutionFrom(l Location, src Source) Resolution {
	return Resolution{
		Coordinate: l.Coordinate(),
		Source:     src,
		City:       l.City,
		Country:    l.Country,
		Timezone:   l.Timezone,
	}
}

// loadCache returns the cached entry, if any, and whether it is within CacheTTL.
func (r *Resolver) loadCache(ctx context.Context) (*cacheEntry, bool) {
	if r.kv == nil {
		return nil, false
	}
	data, err := r.kv.Get(ctx, CacheKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Debug().Err(err).Msg("reading cached location failed")
		}
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.DetectedAt.IsZero() {
		r.log.Debug().Msg("ignoring malformed cached location")
		return nil, false
	}
	return &entry, r.now().Sub(entry.DetectedAt) <= CacheTTL
}

func (r *Resolver) saveCache(ctx context.Context, loc *Location) {
	if r.kv == nil {
		return
	}
	data, err := json.Marshal(cacheEntry{Location: *loc, DetectedAt: r.now().UTC()})
	if err == nil {
		err = r.kv.Set(ctx, CacheKey, data)
	}
	if err != nil {
		r.log.Debug().Err(err).Msg("caching location failed")
	}
}
