package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/jrsteele09/go-photos-proxy/search"
)

const maxSearchBodyBytes = 1 << 16

// searchRequest is the JSON body accepted by POST /photos/search.
type searchRequest struct {
	Query     string          `json:"query"`
	PageSize  int             `json:"pageSize"`
	PageToken string          `json:"pageToken"`
	Strategy  search.Strategy `json:"strategy"`
}

// ListPhotosHandler passes the chronological listing through.
func (s *Server) ListPhotosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageSize, err := parsePageSize(r.URL.Query().Get("pageSize"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		pageToken := r.URL.Query().Get("pageToken")

		var page media.Page
		err = s.gate.Do(r.Context(), sessionContext(r), func(ctx context.Context, accessToken string) error {
			var err error
			page, err = s.media.List(ctx, accessToken, pageSize, pageToken)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, normalisePage(page))
	}
}

// SearchPhotosHandler accepts the query either as URL parameters (GET) or a JSON body (POST).
func (s *Server) SearchPhotosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readSearchRequest(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var result search.Result
		err = s.gate.Do(r.Context(), sessionContext(r), func(ctx context.Context, accessToken string) error {
			var err error
			result, err = s.searcher.Search(ctx, accessToken, req)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		result.Page = normalisePage(result.Page)
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) GetPhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var item media.MediaItem
		err := s.gate.Do(r.Context(), sessionContext(r), func(ctx context.Context, accessToken string) error {
			var err error
			item, err = s.media.Get(ctx, accessToken, id)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func readSearchRequest(r *http.Request) (search.Request, error) {
	var body searchRequest

	if r.Method == http.MethodPost {
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxSearchBodyBytes))
		if err := decoder.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return search.Request{}, errors.Wrap(errors.KindInvalidRequest, err, "invalid search request body")
		}
		if body.PageSize < 0 {
			return search.Request{}, errors.New(errors.KindInvalidRequest, "pageSize must be a positive integer")
		}
	} else {
		q := r.URL.Query()
		pageSize, err := parsePageSize(q.Get("pageSize"))
		if err != nil {
			return search.Request{}, err
		}
		body = searchRequest{
			Query:     q.Get("query"),
			PageSize:  pageSize,
			PageToken: q.Get("pageToken"),
			Strategy:  search.Strategy(q.Get("strategy")),
		}
	}

	if body.Strategy != "" && !body.Strategy.Valid() {
		return search.Request{}, errors.New(errors.KindInvalidRequest, "unknown search strategy")
	}
	return search.Request{
		Query:     body.Query,
		PageSize:  body.PageSize,
		PageToken: body.PageToken,
		Strategy:  body.Strategy,
	}, nil
}

// parsePageSize treats an absent value as the default page size.
func parsePageSize(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.KindInvalidRequest, "pageSize must be a positive integer")
	}
	return n, nil
}

// normalisePage renders an empty page as [] rather than null.
func normalisePage(page media.Page) media.Page {
	if page.Items == nil {
		page.Items = []media.MediaItem{}
	}
	return page
}
