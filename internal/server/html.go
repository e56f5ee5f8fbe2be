package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"

	"gridwatch/internal/dataset"
	"gridwatch/internal/logging"
)

// Templates are inline so the binary stays self-contained.
var (
	indexTemplate = template.Must(template.New("index").Parse(indexHTML))
	frameTemplate = template.Must(template.New("frame").Parse(frameHTML))
)

type indexFrame struct {
	Name     string
	URL      string
	Rows     string
	Columns  int
	Size     string
	LoadedAt string
}

type indexData struct {
	FrameCount int
	TotalRows  string
	TotalSize  string
	Frames     []indexFrame
}

type frameColumn struct {
	Name    string
	SortURL string
	Marker  string
}

type frameData struct {
	Name       string
	Showing    string
	Filter     string
	Columns    []frameColumn
	Rows       [][]string
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	JSONURL    string
	CSVURL     string
	SummaryURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names := s.store.Names()
	data := indexData{
		FrameCount: len(names),
		TotalRows:  humanize.Comma(int64(s.store.TotalRows())),
		TotalSize:  humanize.Bytes(uint64(s.store.TotalBytes())),
		Frames:     make([]indexFrame, 0, len(names)),
	}
	for _, name := range names {
		f, ok := s.store.Frame(name)
		if !ok {
			continue
		}
		data.Frames = append(data.Frames, indexFrame{
			Name:     f.Name(),
			URL:      "/frames/" + url.PathEscape(f.Name()),
			Rows:     humanize.Comma(int64(f.Len())),
			Columns:  f.Schema().Len(),
			Size:     humanize.Bytes(uint64(f.Bytes())),
			LoadedAt: humanize.Time(f.LoadedAt()),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logging.Warn("index render failed", "error", err)
	}
}

func (s *Server) handleFramePage(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.lookupFrame(w, r.PathValue("name"))
	if !ok {
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, fmt.Sprintf("page must be a positive integer, got %q", v), http.StatusBadRequest)
			return
		}
		page = n
	}
	q.Offset = (page - 1) * s.cfg.PageSize
	q.Limit = s.cfg.PageSize

	res, err := frame.Select(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := buildFramePage(frame.Name(), res, q, page, r.URL.Query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := frameTemplate.Execute(w, data); err != nil {
		logging.Warn("frame render failed", "frame", frame.Name(), "error", err)
	}
}

func buildFramePage(name string, res *dataset.Result, q dataset.Query, page int, params url.Values) frameData {
	data := frameData{
		Name:       name,
		Filter:     q.Filter,
		HasPrev:    page > 1,
		HasNext:    q.Offset+len(res.Rows) < res.TotalMatched,
		PrevURL:    pageURL(name, params, page-1),
		NextURL:    pageURL(name, params, page+1),
		JSONURL:    "/api/frames/" + url.PathEscape(name) + filterSuffix(params),
		CSVURL:     "/export/" + url.PathEscape(name) + ".csv" + filterSuffix(params),
		SummaryURL: "/api/frames/" + url.PathEscape(name) + "/summary",
	}

	switch {
	case res.TotalMatched == 0:
		data.Showing = "no matching rows"
	case len(res.Rows) == 0:
		data.Showing = fmt.Sprintf("no rows on this page (%s matching)",
			humanize.Comma(int64(res.TotalMatched)))
	default:
		data.Showing = fmt.Sprintf("rows %s to %s of %s",
			humanize.Comma(int64(q.Offset+1)),
			humanize.Comma(int64(q.Offset+len(res.Rows))),
			humanize.Comma(int64(res.TotalMatched)))
	}

	names := res.Schema.Names()
	data.Columns = make([]frameColumn, len(names))
	for i, col := range names {
		data.Columns[i] = frameColumn{
			Name:    col,
			SortURL: sortURL(name, params, col, q),
			Marker:  sortMarker(col, q),
		}
	}

	data.Rows = make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]string, len(names))
		for j := range names {
			cells[j] = row.Cell(j).String()
		}
		data.Rows[i] = cells
	}
	return data
}

// filterSuffix keeps the filter parameters for API and export links
// and drops paging, so downloads cover the whole filtered set.
func filterSuffix(params url.Values) string {
	kept := url.Values{}
	for _, name := range []string{"q", "col", "from", "to", "sort", "desc"} {
		if v := params.Get(name); v != "" {
			kept.Set(name, v)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "?" + kept.Encode()
}

func pageURL(name string, params url.Values, page int) string {
	p := cloneValues(params)
	if page <= 1 {
		p.Del("page")
	} else {
		p.Set("page", strconv.Itoa(page))
	}
	return frameURL(name, p)
}

// sortURL links a column header to sorting by that column. A second
// click on the current sort column flips the direction.
func sortURL(name string, params url.Values, col string, q dataset.Query) string {
	p := cloneValues(params)
	p.Del("page")
	p.Set("sort", col)
	if q.SortBy == col && !q.Desc {
		p.Set("desc", "true")
	} else {
		p.Del("desc")
	}
	return frameURL(name, p)
}

func sortMarker(col string, q dataset.Query) string {
	if q.SortBy != col {
		return ""
	}
	if q.Desc {
		return " ▼"
	}
	return " ▲"
}

func frameURL(name string, params url.Values) string {
	u := "/frames/" + url.PathEscape(name)
	if qs := params.Encode(); qs != "" {
		u += "?" + qs
	}
	return u
}

func cloneValues(params url.Values) url.Values {
	clone := make(url.Values, len(params))
	for k, vs := range params {
		clone[k] = append([]string(nil), vs...)
	}
	return clone
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>gridwatch</title>
<style>
 body { font-family: sans-serif; margin: 2em; }
 table { border-collapse: collapse; margin-top: 1em; }
 th, td { border: 1px solid #ddd; padding: 4px 12px; text-align: left; }
 th { background: #f5f5f5; }
 .meta { color: #666; }
</style>
</head>
<body>
<h1>gridwatch</h1>
<p class="meta">{{.FrameCount}} frames &middot; {{.TotalRows}} rows &middot; {{.TotalSize}} &middot; <a href="/api/frames">json</a></p>
{{if .Frames}}<table>
<tr><th>Frame</th><th>Rows</th><th>Columns</th><th>Size</th><th>Loaded</th></tr>
{{range .Frames}}<tr><td><a href="{{.URL}}">{{.Name}}</a></td><td>{{.Rows}}</td><td>{{.Columns}}</td><td>{{.Size}}</td><td>{{.LoadedAt}}</td></tr>
{{end}}</table>
{{else}}<p>No frames loaded yet.</p>
{{end}}</body>
</html>
`

const frameHTML = `<!DOCTYPE html>
<html>
<head>
<title>{{.Name}} - gridwatch</title>
<style>
 body { font-family: sans-serif; margin: 2em; }
 table { border-collapse: collapse; margin-top: 1em; }
 th, td { border: 1px solid #ddd; padding: 4px 12px; text-align: left; }
 th { background: #f5f5f5; }
 th a { color: inherit; text-decoration: none; }
 .meta { color: #666; }
 form { margin-top: 1em; }
</style>
</head>
<body>
<p><a href="/">&larr; frames</a></p>
<h1>{{.Name}}</h1>
<p class="meta">{{.Showing}} &middot; <a href="{{.JSONURL}}">json</a> &middot; <a href="{{.CSVURL}}">csv</a> &middot; <a href="{{.SummaryURL}}">summary</a></p>
<form method="get">
<input type="text" name="q" placeholder="filter" value="{{.Filter}}">
<button type="submit">Apply</button>
</form>
<table>
<tr>{{range .Columns}}<th><a href="{{.SortURL}}">{{.Name}}{{.Marker}}</a></th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
<p>
{{if .HasPrev}}<a href="{{.PrevURL}}">&laquo; prev</a>{{end}}
{{if .HasNext}}<a href="{{.NextURL}}">next &raquo;</a>{{end}}
</p>
</body>
</html>
`
