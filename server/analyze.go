package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"cast_check/analysis"
	"cast_check/cache"
	"cast_check/fight"
	"cast_check/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const maxBodySize = 32 << 20

var ErrBadRequest = errors.New("server: bad request")

type AnalyzeRequest struct {
	Fights []*fight.Fight `json:"fights"`
}

type AnalyzeResponse struct {
	Reports []*analysis.Report `json:"reports"`
}

func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(body) > maxBodySize {
		return nil, errors.Wrap(ErrBadRequest, "body too large")
	}
	return body, nil
}

func parseRequest(body []byte) (*AnalyzeRequest, error) {
	var req AnalyzeRequest
	if err := jsoniter.Unmarshal(body, &req); err != nil {
		return nil, errors.Wrap(ErrBadRequest, err.Error())
	}

	if len(req.Fights) == 0 {
		return nil, errors.Wrap(ErrBadRequest, "no fights")
	}
	for i, f := range req.Fights {
		if f == nil {
			return nil, errors.Wrapf(ErrBadRequest, "fight %d is null", i)
		}
		if err := f.Validate(); err != nil {
			return nil, errors.Wrapf(ErrBadRequest, "fight %d: %v", i, err)
		}
	}
	return &req, nil
}

// analyze answers one request body, from the cache when an identical body was
// computed recently.
func (s *Server) analyze(ctx context.Context, body []byte, progress func(done, total int)) (*AnalyzeResponse, error) {
	h := cache.NewHash("analyze")
	h.Write(body)

	var resp AnalyzeResponse
	if s.cache.Load(h, &resp) {
		s.metrics.cacheHits.Inc()
		if progress != nil {
			progress(len(resp.Reports), len(resp.Reports))
		}
		return &resp, nil
	}

	req, err := parseRequest(body)
	if err != nil {
		return nil, err
	}

	inputs := make([]*analysis.Input, len(req.Fights))
	for i, f := range req.Fights {
		inputs[i] = f.Input(s.specs)
	}

	started := time.Now()
	reports, err := analysis.ComputeAll(ctx, inputs, s.workers, progress)
	if err != nil {
		return nil, err
	}
	s.metrics.observe(reports, time.Since(started))

	for _, r := range reports {
		share.CaptureFailures(r)
	}

	resp.Reports = reports
	s.cache.Save(h, &resp)

	return &resp, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, analysis.ErrInvalidWindow):
		return http.StatusBadRequest
	case share.IsContextClosedError(err):
		return 499
	}
	return http.StatusInternalServerError
}
