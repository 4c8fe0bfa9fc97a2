// Package optimizer runs the resume pipeline: read the upload, split off
// the contact header, rewrite the body for a job description, and
// rebuild a .docx around the original header.
package optimizer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/allencass/aistudio/pkg/ai"
	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/cache"
	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/document"
	"github.com/allencass/aistudio/pkg/jobpost"
	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/resume"
	"github.com/allencass/aistudio/pkg/workflow"
)

// OutputFileName is the download name of the rebuilt resume
const OutputFileName = "optimized_resume.docx"

// Input is one optimize request
type Input struct {
	FileName       string
	File           []byte
	JobDescription string
	// APIKey is used when no key is configured for the provider
	APIKey string
}

// Result carries every intermediate of a successful run
type Result struct {
	Header    []string
	Body      string
	Optimized string
	DOCX      []byte
}

// ClientFactory creates a text-generation client
type ClientFactory func(ai.Settings) (ai.Client, error)

// JobFetcher resolves a job posting URL to its text
type JobFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Service holds everything Optimize needs. It is safe for concurrent use.
type Service struct {
	Segmenter *resume.Segmenter
	Prompt    *workflow.Prompt
	Settings  ai.Settings
	NewClient ClientFactory
	// Jobs, when set, fetches job descriptions given as a URL
	Jobs JobFetcher
	// Cache, when set, replays earlier rewrites of identical requests
	Cache *cache.Store
}

// New builds a Service from configuration
func New(cfg *config.Config, userAgent string) (*Service, error) {
	prompt, err := workflow.Load(cfg.Text.PromptPath)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Segmenter: &resume.Segmenter{
			Detector: resume.NewPositionalDetector(cfg.Resume.HeaderLimit, cfg.Resume.StopKeywords...),
			Titles:   resume.NewLabels(cfg.Resume.SectionTitles...),
		},
		Prompt:    prompt,
		Settings:  ai.SettingsFromConfig(cfg),
		NewClient: ai.NewClient,
		Jobs:      jobpost.NewFetcher(userAgent),
	}
	if cfg.Cache.Enabled {
		if svc.Cache, err = cache.New(cfg.Cache.Dir); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// NeedsAPIKey reports whether the configured provider has no key, so a
// caller should ask the user for one.
func (s *Service) NeedsAPIKey() bool {
	_, key, err := s.Settings.Credential()
	return err == nil && key == ""
}

// Provider returns the resolved provider name
func (s *Service) Provider() string {
	p, _ := ai.ProviderFor(s.Settings.Provider, s.Settings.Model)
	return p
}

// Optimize runs the full pipeline. Inputs are checked before the
// credential, and the credential before any parsing or network call.
func (s *Service) Optimize(ctx context.Context, in Input) (*Result, error) {
	const op = "optimize"
	start := time.Now()

	if len(in.File) == 0 {
		return nil, apperr.MissingInput(op, "please upload your resume file")
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, apperr.MissingInput(op, "please enter the job description")
	}

	settings := s.Settings.WithRequestKey(in.APIKey)
	if err := checkCredential(op, settings); err != nil {
		return nil, err
	}

	doc, err := document.Read(in.FileName, in.File)
	if err != nil {
		return nil, err
	}

	split := s.Segmenter.Split(doc)
	header, body := split.Header(), split.Body()
	clog.Debug("resume split", "paragraphs", doc.Len(), "boundary", split.Boundary, "header_lines", len(header))

	jd, err := s.jobDescription(ctx, in.JobDescription)
	if err != nil {
		return nil, err
	}

	optimized, err := s.rewrite(ctx, settings, body, jd)
	if err != nil {
		return nil, err
	}

	out := s.Segmenter.Rebuild(header, optimized)
	data, err := document.EncodeDOCX(out)
	if err != nil {
		return nil, err
	}

	clog.Info("resume optimized",
		"file", in.FileName,
		"header_lines", len(header),
		"output_paragraphs", out.Len(),
		"bytes", len(data),
		"duration", time.Since(start),
	)

	return &Result{
		Header:    header,
		Body:      body,
		Optimized: optimized,
		DOCX:      data,
	}, nil
}

// Rewrite sends body and the job description through the rewrite
// prompt and returns the provider's text.
func (s *Service) Rewrite(ctx context.Context, body, jobDescription, apiKey string) (string, error) {
	settings := s.Settings.WithRequestKey(apiKey)
	if err := checkCredential("rewrite", settings); err != nil {
		return "", err
	}
	return s.rewrite(ctx, settings, body, jobDescription)
}

func (s *Service) rewrite(ctx context.Context, settings ai.Settings, body, jobDescription string) (string, error) {
	const op = "rewrite"

	prompt := s.Prompt
	if prompt == nil {
		prompt = workflow.Default()
	}
	user, err := prompt.Render(body, jobDescription)
	if err != nil {
		return "", err
	}

	key := s.cacheKey(settings, prompt.System, user)
	if text, ok := s.cached(key); ok {
		return text, nil
	}

	newClient := s.NewClient
	if newClient == nil {
		newClient = ai.NewClient
	}
	client, err := newClient(settings)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.GenerateContentWithSystem(ctx, prompt.System, user)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.External(op, "error optimizing resume", err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.External(op, "error optimizing resume: empty response", nil)
	}

	if s.Cache != nil {
		if err := s.Cache.Put(key, cache.Entry{Model: settings.Model, Text: text}); err != nil {
			clog.Warn("caching rewrite", "error", err)
		}
	}
	return text, nil
}

func (s *Service) cacheKey(settings ai.Settings, system, user string) string {
	if s.Cache == nil {
		return ""
	}
	provider, _ := ai.ProviderFor(settings.Provider, settings.Model)
	return cache.Key(
		provider,
		settings.Model,
		strconv.FormatFloat(settings.Temperature, 'g', -1, 64),
		strconv.Itoa(settings.MaxTokens),
		system,
		user,
	)
}

// cached looks up key. Read errors count as a miss.
func (s *Service) cached(key string) (string, bool) {
	if s.Cache == nil {
		return "", false
	}
	e, ok, err := s.Cache.Get(key)
	if err != nil {
		clog.Warn("reading rewrite cache", "error", err)
		return "", false
	}
	if ok {
		clog.Info("rewrite served from cache", "model", e.Model, "cached_at", e.CreatedAt)
	}
	return e.Text, ok
}

func (s *Service) jobDescription(ctx context.Context, jd string) (string, error) {
	if s.Jobs == nil || !jobpost.IsURL(jd) {
		return jd, nil
	}
	return s.Jobs.Fetch(ctx, jd)
}

func checkCredential(op string, settings ai.Settings) error {
	provider, key, err := settings.Credential()
	if err != nil {
		return err
	}
	if key == "" {
		return apperr.MissingCredential(op, ai.CredentialEnv(provider))
	}
	return nil
}
