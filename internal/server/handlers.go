package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"gridwatch/internal/cache"
	"gridwatch/internal/calendar"
	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/export"
	"gridwatch/internal/logging"
)

// frameInfo is one entry of the JSON frame listing.
type frameInfo struct {
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	Bytes    int64     `json:"bytes"`
	Version  uint64    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
}

// frameListing is the /api/frames response body.
type frameListing struct {
	Frames     []frameInfo `json:"frames"`
	TotalRows  int         `json:"total_rows"`
	TotalBytes int64       `json:"total_bytes"`
}

// buildListing snapshots the store into a listing plus its cache key.
// Frame versions are globally unique, so their sum changes whenever
// any frame reloads.
func (s *Server) buildListing() (uint64, frameListing) {
	names := s.store.Names()
	listing := frameListing{Frames: make([]frameInfo, 0, len(names))}

	var versions uint64
	for _, name := range names {
		f, ok := s.store.Frame(name)
		if !ok {
			continue
		}
		versions += f.Version()
		listing.Frames = append(listing.Frames, frameInfo{
			Name:     f.Name(),
			Rows:     f.Len(),
			Columns:  f.Schema().Len(),
			Bytes:    f.Bytes(),
			Version:  f.Version(),
			LoadedAt: f.LoadedAt(),
		})
		listing.TotalRows += f.Len()
		listing.TotalBytes += f.Bytes()
	}

	key := cache.Fingerprint("", versions, "frames="+strings.Join(names, ","))
	return key, listing
}

func (s *Server) handleFrameList(w http.ResponseWriter, r *http.Request) {
	key, listing := s.buildListing()
	if payload, ok := s.queryCache.Get(key); ok {
		writePayload(w, "application/json", payload)
		return
	}

	data, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data = append(data, '\n')
	s.queryCache.Add(key, data)
	writePayload(w, "application/json", data)
}

func (s *Server) handleFrameRows(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.lookupFrame(w, r.PathValue("name"))
	if !ok {
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, contentType, err := s.cachedRender(r, frame, q, export.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePayload(w, contentType, payload)
}

func (s *Server) handleFrameSummary(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.lookupFrame(w, r.PathValue("name"))
	if !ok {
		return
	}

	key := cache.Fingerprint(frame.Name(), frame.Version(), "summary")
	if payload, ok := s.queryCache.Get(key); ok {
		writePayload(w, "application/json", payload)
		return
	}

	summary, err := frame.Summarize(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data = append(data, '\n')
	s.queryCache.Add(key, data)
	writePayload(w, "application/json", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	format, err := export.ParseFormat(ext)
	if err != nil || name == "" {
		http.Error(w, "export path must be /export/{frame}.csv or .json", http.StatusBadRequest)
		return
	}

	frame, ok := s.lookupFrame(w, name)
	if !ok {
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, contentType, err := s.cachedRender(r, frame, q, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	writePayload(w, contentType, payload)
}

// cachedRender runs the query and renders the result in the given
// format, going through the cache keyed by frame version, canonical
// query, and format.
func (s *Server) cachedRender(r *http.Request, frame *dataset.Frame, q dataset.Query, format export.Format) ([]byte, string, error) {
	exp, err := export.For(format)
	if err != nil {
		return nil, "", err
	}

	key := cache.Fingerprint(frame.Name(), frame.Version(), q.Canonical()+"|render="+string(format))
	if payload, ok := s.queryCache.Get(key); ok {
		return payload, exp.ContentType(), nil
	}

	res, err := frame.Select(r.Context(), q)
	if err != nil {
		return nil, "", err
	}
	buf, err := exp.Render(res)
	if err != nil {
		return nil, "", err
	}

	payload := buf.Bytes()
	s.queryCache.Add(key, payload)
	return payload, exp.ContentType(), nil
}

// lookupFrame resolves a frame name or writes a 404.
func (s *Server) lookupFrame(w http.ResponseWriter, name string) (*dataset.Frame, bool) {
	frame, ok := s.store.Frame(name)
	if !ok {
		http.Error(w, griderrors.FrameNotFound(name).Error(), http.StatusNotFound)
		return nil, false
	}
	return frame, true
}

// writeError maps a handler failure to a status code. Client
// disconnects are dropped silently.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case r.Context().Err() != nil:
	case errors.Is(err, dataset.ErrUnknownColumn) || griderrors.IsUserError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logging.Warn("request failed", "uri", r.URL.RequestURI(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writePayload(w http.ResponseWriter, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	_, _ = w.Write(payload)
}

// parseQuery maps request parameters onto a frame query. Recognized
// parameters: q, col, from, to, sort, desc, offset, limit.
func parseQuery(r *http.Request) (dataset.Query, error) {
	params := r.URL.Query()
	q := dataset.Query{
		Filter: params.Get("q"),
		Column: params.Get("col"),
		SortBy: params.Get("sort"),
	}

	rng, err := calendar.ParseRange(params.Get("from"), params.Get("to"))
	if err != nil {
		bounds := params.Get("from") + ".." + params.Get("to")
		return dataset.Query{}, griderrors.BadRange(bounds, err)
	}
	q.Range = rng

	if v := params.Get("desc"); v != "" {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			return dataset.Query{}, fmt.Errorf("desc must be a boolean, got %q", v)
		}
		q.Desc = desc
	}
	if q.Offset, err = intParam(params, "offset"); err != nil {
		return dataset.Query{}, err
	}
	if q.Limit, err = intParam(params, "limit"); err != nil {
		return dataset.Query{}, err
	}
	return q, nil
}

func intParam(params url.Values, name string) (int, error) {
	v := params.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, v)
	}
	return n, nil
}
