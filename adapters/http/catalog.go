package http

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/bodygraph/gatesdb/app"
	"github.com/bodygraph/gatesdb/domain/schema"
	"github.com/bodygraph/gatesdb/pkg/jsonapi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type catalogKey struct{}

var metaSingular = map[schema.MetaKind]string{
	schema.MetaTypes:       "type",
	schema.MetaProfiles:    "profile",
	schema.MetaAuthorities: "authority",
	schema.MetaCrosses:     "cross",
}

// CatalogHandler serves the per-locale read API.
type CatalogHandler struct {
	registry *app.Registry
	logger   zerolog.Logger
}

// NewCatalogHandler creates a catalog handler over registry.
func NewCatalogHandler(registry *app.Registry, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{registry: registry, logger: logger}
}

// Routes mounts the catalog routes on r.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/locales", h.ListLocales)

	r.Route("/{locale}", func(r chi.Router) {
		r.Use(h.withCatalog)

		r.Get("/database", h.GetDatabase)
		r.Get("/gates", h.ListGates)
		r.Get("/gates/{id}", h.GetGate)
		r.Get("/channels", h.ListChannels)
		r.Get("/channels/{id}", h.GetChannel)
		r.Get("/centers", h.ListCenters)
		r.Get("/centers/{id}", h.GetCenter)
		r.Get("/circuits", h.ListCircuits)
		r.Get("/circuits/{id}", h.GetCircuit)
		r.Get("/phs/{group}", h.GetPhs)
		r.Get("/{kind}", h.ListMeta)
		r.Get("/{kind}/{id}", h.GetMeta)
	})
}

// withCatalog resolves the {locale} parameter to its current catalog.
func (h *CatalogHandler) withCatalog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := chi.URLParam(r, "locale")
		svc, ok := h.registry.Lookup(locale)
		if !ok {
			jsonapi.WriteError(w, jsonapi.NewError(http.StatusNotFound, "not_found", "Not Found").
				Detailf("The locale '%s' is not served", locale).
				Parameter("locale").
				Meta("available", h.registry.Locales()).
				Build())
			return
		}
		cat := svc.Get()
		if cat == nil {
			jsonapi.WriteError(w, jsonapi.ErrServiceUnavailable(fmt.Sprintf("The catalog for locale '%s' is not loaded", locale)))
			return
		}
		w.Header().Set("Content-Language", locale)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), catalogKey{}, cat)))
	})
}

func catalogFrom(ctx context.Context) *app.Catalog {
	cat, _ := ctx.Value(catalogKey{}).(*app.Catalog)
	return cat
}

// ListLocales lists the served locales and the state of their catalogs.
//
//	@Summary	List locales
//	@Tags		Catalog
//	@Produce	json
//	@Router		/v1/locales [get]
func (h *CatalogHandler) ListLocales(w http.ResponseWriter, r *http.Request) {
	locales := h.registry.Locales()
	resources := make([]jsonapi.Resource, 0, len(locales))
	for _, locale := range locales {
		svc, _ := h.registry.Lookup(locale)
		rb := jsonapi.NewResource("locales", locale).
			Attr("default", locale == h.registry.DefaultLocale()).
			Link("/v1/" + url.PathEscape(locale) + "/database")
		if cat := svc.Get(); cat != nil {
			rb.Attr("loaded", true).
				Attr("checksum", cat.Checksum).
				Attr("loaded_at", cat.LoadedAt).
				Attr("counts", cat.Counts())
		} else {
			rb.Attr("loaded", false)
		}
		resources = append(resources, rb.Build())
	}
	jsonapi.WriteCollection(w, http.StatusOK, resources, nil)
}

// GetDatabase returns the whole interchange document of a locale.
//
//	@Summary	Get the whole gates database
//	@Tags		Catalog
//	@Produce	json
//	@Param		locale	path	string	true	"Locale"
//	@Param		format	query	string	false	"json or yaml"
//	@Router		/v1/{locale}/database [get]
func (h *CatalogHandler) GetDatabase(w http.ResponseWriter, r *http.Request) {
	cat := catalogFrom(r.Context())

	etag := `"` + cat.Checksum + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", cat.LoadedAt.UTC().Format(http.TimeFormat))
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Write(cat.Document)
	case "yaml":
		data, err := schema.EncodeYAML(cat.Database)
		if err != nil {
			h.logger.Error().Err(err).Str("locale", cat.Locale).Msg("encode yaml failed")
			jsonapi.WriteInternalError(w, "")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
	default:
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("format", fmt.Sprintf("Unsupported format '%s'. Use json or yaml.", format)))
	}
}

// ListGates lists the gates of a locale.
func (h *CatalogHandler) ListGates(w http.ResponseWriter, r *http.Request) {
	writeEntries(w, r, "gates", catalogFrom(r.Context()).Database.Gates)
}

// GetGate returns one gate.
func (h *CatalogHandler) GetGate(w http.ResponseWriter, r *http.Request) {
	writeEntry(w, r, "gates", "gate", catalogFrom(r.Context()).Database.Gates)
}

// ListChannels lists the channels of a locale.
func (h *CatalogHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	writeEntries(w, r, "channels", catalogFrom(r.Context()).Database.Channels)
}

// GetChannel returns one channel.
func (h *CatalogHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	writeEntry(w, r, "channels", "channel", catalogFrom(r.Context()).Database.Channels)
}

// ListCenters lists the centers of a locale.
func (h *CatalogHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	writeEntries(w, r, "centers", catalogFrom(r.Context()).Database.Centers)
}

// GetCenter returns one center.
func (h *CatalogHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	writeEntry(w, r, "centers", "center", catalogFrom(r.Context()).Database.Centers)
}

// ListCircuits lists the circuit catalogue. A database without circuits
// yields an empty collection.
func (h *CatalogHandler) ListCircuits(w http.ResponseWriter, r *http.Request) {
	circuits, _ := catalogFrom(r.Context()).Database.Circuits.Get()
	writeEntries(w, r, "circuits", circuits)
}

// GetCircuit returns one circuit group.
func (h *CatalogHandler) GetCircuit(w http.ResponseWriter, r *http.Request) {
	circuits, _ := catalogFrom(r.Context()).Database.Circuits.Get()
	writeEntry(w, r, "circuits", "circuit", circuits)
}

// ListMeta lists types, profiles, authorities or crosses.
func (h *CatalogHandler) ListMeta(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	db := catalogFrom(r.Context()).Database
	entries, ok := db.Meta(schema.MetaKind(kind))
	if !ok {
		writeNotFound(w, "collection")
		return
	}
	writeEntries(w, r, kind, entries)
}

// GetMeta returns one entry of types, profiles, authorities or crosses.
func (h *CatalogHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	db := catalogFrom(r.Context()).Database
	entries, ok := db.Meta(schema.MetaKind(kind))
	if !ok {
		writeNotFound(w, "collection")
		return
	}
	writeEntry(w, r, kind, metaSingular[schema.MetaKind(kind)], entries)
}

// GetPhs returns the colors and tones of one PHS group.
//
//	@Summary	Get a PHS block
//	@Tags		Catalog
//	@Produce	json
//	@Param		locale	path	string	true	"Locale"
//	@Param		group	path	string	true	"diet, motivation, vision or environment"
//	@Router		/v1/{locale}/phs/{group} [get]
func (h *CatalogHandler) GetPhs(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	db := catalogFrom(r.Context()).Database
	block, ok := db.Phs(schema.PhsGroup(group))
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFoundWithID("phs group", group))
		return
	}
	res, err := toResource("phs", group, block, r.URL.Path)
	if err != nil {
		jsonapi.WriteInternalError(w, "")
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

// writeEntries writes a collection of map entries ordered by id. The
// collection is paginated when page parameters are present.
func writeEntries[T any](w http.ResponseWriter, r *http.Request, resourceType string, entries map[string]T) {
	ids := SortedIDs(entries)

	var pagination *jsonapi.Pagination
	if page, size, ok := jsonapi.ParsePaginationParams(r.URL.Query(), jsonapi.MaxPageSize); ok {
		pagination = jsonapi.NewPagination(len(ids), page, size, r.URL.Path)
		start, end := pagination.Bounds()
		ids = ids[start:end]
	}

	resources := make([]jsonapi.Resource, 0, len(ids))
	for _, id := range ids {
		res, err := toResource(resourceType, id, entries[id], r.URL.Path+"/"+url.PathEscape(id))
		if err != nil {
			jsonapi.WriteInternalError(w, "")
			return
		}
		resources = append(resources, res)
	}
	jsonapi.WriteCollection(w, http.StatusOK, resources, pagination)
}

func writeEntry[T any](w http.ResponseWriter, r *http.Request, resourceType, singular string, entries map[string]T) {
	id := chi.URLParam(r, "id")
	v, ok := entries[id]
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFoundWithID(singular, id))
		return
	}
	res, err := toResource(resourceType, id, v, r.URL.Path)
	if err != nil {
		jsonapi.WriteInternalError(w, "")
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

func toResource(resourceType, id string, v any, self string) (jsonapi.Resource, error) {
	attrs, err := jsonapi.AttributesOf(v)
	if err != nil {
		return jsonapi.Resource{}, err
	}
	return jsonapi.NewResource(resourceType, id).Attrs(attrs).Link(self).Build(), nil
}

// SortedIDs returns the keys of entries with numeric ids first in numeric
// order, followed by the remaining ids in lexical order.
func SortedIDs[T any](entries map[string]T) []string {
	ids := slices.Collect(maps.Keys(entries))
	slices.SortFunc(ids, func(a, b string) int {
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			if c := cmp.Compare(na, nb); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
	return ids
}

// etagMatches reports whether an If-None-Match header matches etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func writeNotFound(w http.ResponseWriter, resourceType string) {
	jsonapi.WriteNotFound(w, resourceType)
}

func writeMethodNotAllowed(w http.ResponseWriter, method string) {
	jsonapi.WriteMethodNotAllowed(w, method, []string{http.MethodGet, http.MethodHead})
}
