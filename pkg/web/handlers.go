package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/document"
	"github.com/allencass/aistudio/pkg/imagegen"
	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/optimizer"
)

// resumePage fills resume.html
type resumePage struct {
	Title          string
	Error          string
	NeedsKey       bool
	Provider       string
	JobDescription string

	Success      bool
	DownloadURI  template.URL
	DownloadName string
	Preview      string
}

// imagePage fills image.html
type imagePage struct {
	Title        string
	Error        string
	Prompt       string
	ImageURI     template.URL
	DownloadName string
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

func (s *Server) newResumePage() resumePage {
	return resumePage{
		Title:    "Resume Optimizer",
		NeedsKey: s.optimizer.NeedsAPIKey(),
		Provider: s.optimizer.Provider(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "resume.html", s.newResumePage())
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	page := s.newResumePage()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.MissingInput("upload", fmt.Sprintf("the resume file is too large (limit %d MB)", s.cfg.MaxUploadBytes>>20))
		} else {
			err = apperr.MissingInput("upload", "could not read the submitted form")
		}
		s.renderError(w, r, "resume.html", &page, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	page.JobDescription = r.FormValue("job_description")
	in := optimizer.Input{
		JobDescription: page.JobDescription,
		APIKey:         r.FormValue("api_key"),
	}

	file, hdr, err := r.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		s.renderError(w, r, "resume.html", &page, apperr.MissingInput("upload", "could not read the uploaded resume"))
		return
	default:
		in.FileName = hdr.Filename
		in.File, err = io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			s.renderError(w, r, "resume.html", &page, apperr.MissingInput("upload", "could not read the uploaded resume"))
			return
		}
	}

	res, err := s.optimizer.Optimize(r.Context(), in)
	if err != nil {
		s.renderError(w, r, "resume.html", &page, err)
		return
	}

	page.Success = true
	page.DownloadURI = dataURI(document.MIMEDOCX, res.DOCX)
	page.DownloadName = optimizer.OutputFileName
	page.Preview = res.Optimized
	s.render(w, r, http.StatusOK, "resume.html", page)
}

func (s *Server) handleImageForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "image.html", imagePage{
		Title:  "Text-to-Image Generator",
		Prompt: imagegen.DefaultPrompt,
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	page := imagePage{
		Title:  "Text-to-Image Generator",
		Prompt: r.FormValue("prompt"),
	}

	gen, err := s.images()
	if err != nil {
		s.renderError(w, r, "image.html", &page, err)
		return
	}

	png, err := gen.GeneratePNG(r.Context(), page.Prompt)
	if err != nil {
		s.renderError(w, r, "image.html", &page, err)
		return
	}

	page.ImageURI = dataURI(imagegen.MIMEPNG, png)
	page.DownloadName = imagegen.FileName
	s.render(w, r, http.StatusOK, "image.html", page)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// renderError re-renders page with the error message and its status
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, name string, page any, err error) {
	status := apperr.HTTPStatus(err)
	clog.Warn("request failed",
		"path", r.URL.Path,
		"kind", apperr.KindOf(err).String(),
		"status", status,
		"request_id", RequestID(r.Context()),
		"error", err,
	)

	msg := apperr.Message(err)
	if status == http.StatusInternalServerError {
		msg = "something went wrong, please try again"
	}
	switch p := page.(type) {
	case *resumePage:
		p.Error = msg
		s.render(w, r, status, name, *p)
	case *imagePage:
		p.Error = msg
		s.render(w, r, status, name, *p)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		clog.Error("rendering page", "page", name, "request_id", RequestID(r.Context()), "error", err)
	}
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		clog.Error("encoding JSON response", "error", err)
	}
}
