package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/pipeline"
	"github.com/nijaru/yt-summary/report"
	"github.com/nijaru/yt-summary/utils"
	"github.com/sirupsen/logrus"
)

const maxRequestBody = 1 << 16

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

type ReportStore interface {
	Save(ctx context.Context, r *models.Report) error
	Get(ctx context.Context, id string) (*models.Report, error)
	Take(ctx context.Context, id string) (*models.Report, error)
}

type Handler struct {
	runner    Runner
	store     ReportStore
	staticDir string
}

func New(runner Runner, store ReportStore, staticDir string) *Handler {
	return &Handler{runner: runner, store: store, staticDir: staticDir}
}

// Register adds every route to mux. limit wraps the summarize endpoint only.
func (h *Handler) Register(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	summarize := http.Handler(http.HandlerFunc(h.SummarizeHandler))
	if limit != nil {
		summarize = limit(summarize)
	}

	mux.HandleFunc("GET /{$}", h.IndexHandler)
	mux.HandleFunc("GET /health", h.HealthHandler)
	mux.Handle("POST /api/summarize", summarize)
	mux.HandleFunc("GET /api/reports/{id}", h.GetReportHandler)
	mux.HandleFunc("GET /api/reports/{id}/download", h.DownloadHandler)
}

func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	req, err := decodeSummarizeRequest(w, r)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	res, err := h.runner.Run(r.Context(), pipeline.Request{URL: req.URL, APIKey: req.APIKey})
	if err != nil {
		logger.WithError(err).WithField("kind", errors.KindOf(err).String()).Warn("Summarize request failed")
		utils.RespondWithError(w, err)
		return
	}

	if err := h.store.Save(r.Context(), res.Report); err != nil {
		logger.WithError(err).Error("Failed to store report")
		utils.RespondWithError(w, errors.Internal("SummarizeHandler", err, "报告保存失败"))
		return
	}

	logger.WithFields(logrus.Fields{
		"report_id": res.Report.ID,
		"method":    res.Report.Summary.Method,
	}).Info("Summary ready")
	utils.RespondWithJSON(w, http.StatusOK, models.NewSummarizeResponse(res.Report, res.Warnings, res.Progress))
}

func (h *Handler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.NewSummarizeResponse(rep, nil, nil))
}

// DownloadHandler serves the Markdown file once; the report is gone afterwards.
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.Take(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rep.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(rep.Markdown)); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to write report")
	}
}

func decodeSummarizeRequest(w http.ResponseWriter, r *http.Request) (models.SummarizeRequest, error) {
	const op = "decodeSummarizeRequest"
	var req models.SummarizeRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.InvalidInput(op, err, "请求格式错误")
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.InvalidInput(op, err, "请求格式错误")
	}
	req.URL = r.PostFormValue("url")
	req.APIKey = r.PostFormValue("api_key")
	return req, nil
}
