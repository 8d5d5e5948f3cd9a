package service

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/location"
	"github.com/pkordes/trip-browser/internal/query"
)

// Location is the addressable location collaborator. *location.Memory
// satisfies it.
type Location interface {
	Params() url.Values
	SetParams(u location.Update) error
}

// Hydrate builds the initial query state from location parameters.
// Missing, unknown or malformed parameters keep their defaults; the names of
// the ignored malformed ones are returned.
func Hydrate(values url.Values, pageSize int) (query.State, []string) {
	s := query.New(pageSize)
	var ignored []string
	reject := func(name string) { ignored = append(ignored, name) }

	str := func(name string) *string {
		v, err := bindOptional[string](values, name, true)
		if err != nil {
			reject(name)
		}
		return v
	}

	if v := str(domain.ParamSortBy); v != nil {
		if f, ok := domain.ParseSortField(*v); ok {
			s.Sort.Field = f
		} else {
			reject(domain.ParamSortBy)
		}
	}
	if v := str(domain.ParamSortOrder); v != nil {
		if d, ok := domain.ParseSortDirection(*v); ok {
			s.Sort.Direction = d
		} else {
			reject(domain.ParamSortOrder)
		}
	}

	page, err := bindOptional[int](values, domain.ParamPage, true)
	switch {
	case err != nil:
		reject(domain.ParamPage)
	case page != nil && *page >= 1:
		s.Page.Page = *page
	case page != nil:
		reject(domain.ParamPage)
	}

	if v := str(domain.ParamTitleFilter); v != nil {
		s.Filter.Title = *v
	}

	price := func(name string) *int {
		raw := str(name)
		if raw == nil {
			return nil
		}
		v, outcome := filter.ParsePrice(*raw)
		if outcome == filter.Rejected {
			reject(name)
		}
		return v
	}
	rating := func(name string) *float64 {
		raw := str(name)
		if raw == nil {
			return nil
		}
		v, outcome := filter.ParseRating(*raw)
		if outcome == filter.Rejected {
			reject(name)
		}
		return v
	}
	s.Filter.MinPrice = price(domain.ParamMinPrice)
	s.Filter.MaxPrice = price(domain.ParamMaxPrice)
	s.Filter.MinRating = rating(domain.ParamMinRating)
	s.Filter.MaxRating = rating(domain.ParamMaxRating)

	tags, err := bindOptional[[]string](values, domain.ParamTags, false)
	if err != nil {
		reject(domain.ParamTags)
	} else if tags != nil {
		s.Filter.Tags = filter.SplitTags(strings.Join(*tags, ","))
	}
	return s, ignored
}

// bindOptional decodes the optional form-style parameter name. The result is
// nil when the parameter is absent.
func bindOptional[T any](values url.Values, name string, explode bool) (*T, error) {
	var dest *T
	if err := runtime.BindQueryParameter("form", explode, false, name, values, &dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// LocationParams returns the location form of s: the required sortBy,
// sortOrder and page, plus every filter that is set. The page size is not
// part of the location.
func LocationParams(s query.State) map[string]string {
	out := s.Filter.Params()
	out[domain.ParamSortBy] = string(s.Sort.Field)
	out[domain.ParamSortOrder] = string(s.Sort.Direction)
	out[domain.ParamPage] = strconv.Itoa(s.Page.Page)
	return out
}

// URLSync mirrors the browser's query state into a Location. The location is
// read exactly once, at construction; afterwards it is only written.
type URLSync struct {
	loc     Location
	log     *slog.Logger
	initial query.State

	mu      sync.Mutex
	last    string
	written bool
	// version is the newest browser view mirrored so far.
	version uint64
}

// NewURLSync reads loc once and hydrates the initial state from it.
func NewURLSync(loc Location, pageSize int, log *slog.Logger) *URLSync {
	if log == nil {
		log = slog.Default()
	}
	initial, ignored := Hydrate(loc.Params(), pageSize)
	if len(ignored) > 0 {
		log.Warn("ignoring malformed location parameters", "params", ignored)
	}
	return &URLSync{loc: loc, log: log, initial: initial}
}

// Initial is the state hydrated from the location.
func (u *URLSync) Initial() query.State { return u.initial }

// Attach mirrors every published view of b. Views that arrive after a newer
// one has been mirrored are dropped. It returns the unsubscribe func.
func (u *URLSync) Attach(b *TripBrowser) func() {
	return b.Subscribe(func(v View) {
		if err := u.mirror(v.Version, v.Query); err != nil {
			u.log.Error("updating location failed", "error", err)
		}
	})
}

// Mirror writes s into the location. Optional parameters that are unset are
// removed, never written empty. A write identical to the previous one is
// skipped. The first write replaces the current history entry; later ones
// push.
func (u *URLSync) Mirror(s query.State) error {
	return u.mirror(0, s)
}

// mirror writes s unless version is older than the last view written.
// Version 0 is unversioned and always considered.
func (u *URLSync) mirror(version uint64, s query.State) error {
	set := LocationParams(s)
	key := encodeParams(set)

	u.mu.Lock()
	defer u.mu.Unlock()
	if version != 0 {
		if version < u.version {
			u.log.Debug("dropping out of order view", "version", version, "mirrored", u.version)
			return nil
		}
		u.version = version
	}
	if u.written && key == u.last {
		return nil
	}

	upd := location.Update{Set: set, Replace: !u.written}
	for _, name := range domain.FilterParamNames {
		if _, ok := set[name]; !ok {
			upd.Remove = append(upd.Remove, name)
		}
	}
	if err := u.loc.SetParams(upd); err != nil {
		return fmt.Errorf("service.URLSync.Mirror: %w", err)
	}
	u.last = key
	u.written = true
	u.log.Debug("location updated", "params", key)
	return nil
}

func encodeParams(m map[string]string) string {
	v := make(url.Values, len(m))
	for k, s := range m {
		v.Set(k, s)
	}
	return v.Encode()
}
