package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/jobs/page_audio"
	"github.com/jackzampolin/lectern/internal/jobs/paragraph_audio"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// GenerateAudioRequest is the optional body for audio generation endpoints.
// Empty fields fall back to the configured defaults.
type GenerateAudioRequest struct {
	Provider string `json:"provider,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

// GenerateAudioResponse is the submitted job's ID.
type GenerateAudioResponse struct {
	JobID string `json:"job_id"`
}

// ParagraphAudioEndpoint handles POST /api/paragraphs/{id}/audio.
type ParagraphAudioEndpoint struct{}

func (e *ParagraphAudioEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/paragraphs/{id}/audio", e.handler
}

func (e *ParagraphAudioEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Generate paragraph audio
//	@Description	Queue a TTS job for one paragraph; poll the jobs API for progress
//	@Tags			audio
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Paragraph ID"
//	@Param			request	body		GenerateAudioRequest	false	"Provider overrides"
//	@Success		202		{object}	GenerateAudioResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/paragraphs/{id}/audio [post]
func (e *ParagraphAudioEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateAudioRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	svcs := svcctx.ServicesFrom(r.Context())
	id := r.PathValue("id")

	p, err := svcs.Books.GetParagraph(r.Context(), id)
	if err != nil {
		writeBookError(w, err)
		return
	}

	cfg := serverConfig(svcs.ConfigMgr)
	providerName := req.Provider
	if providerName == "" {
		providerName = cfg.Defaults.TTSProvider
	}
	provider, err := svcs.Registry.Get(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = cfg.TTSProviders[providerName].Voice
	}

	job, err := paragraph_audio.New(paragraph_audio.Config{
		ParagraphID:     p.ID,
		Voice:           voice,
		Format:          cfg.Defaults.AudioFormat,
		MaxSegmentChars: cfg.Defaults.MaxSegmentChars,
		Books:           svcs.Books,
		Provider:        provider,
		Home:            svcs.Home,
		Logger:          svcs.Logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID, err := svcs.JobManager.Submit(job, map[string]string{
		"paragraph_id": p.ID,
		"book_id":      p.BookID,
		"provider":     providerName,
		"voice":        voice,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, GenerateAudioResponse{JobID: jobID})
}

func (e *ParagraphAudioEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, voice string
	cmd := &cobra.Command{
		Use:   "paragraph <paragraph-id>",
		Short: "Queue audio generation for a paragraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GenerateAudioResponse
			err := client.Post(cmd.Context(), "/api/paragraphs/"+args[0]+"/audio",
				GenerateAudioRequest{Provider: provider, Voice: voice}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "TTS provider (default from config)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice (default from config)")
	return cmd
}

// PageAudioEndpoint handles POST /api/pages/{id}/audio.
type PageAudioEndpoint struct{}

func (e *PageAudioEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pages/{id}/audio", e.handler
}

func (e *PageAudioEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Combine page audio
//	@Description	Queue a job that joins a page's paragraph audio files into one file; every paragraph needs ready audio first
//	@Tags			audio
//	@Produce		json
//	@Param			id	path		string	true	"Page ID"
//	@Success		202	{object}	GenerateAudioResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/pages/{id}/audio [post]
func (e *PageAudioEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs := svcctx.ServicesFrom(r.Context())

	page, err := svcs.Books.GetPage(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBookError(w, err)
		return
	}

	job, err := page_audio.New(page_audio.Config{
		PageID: page.ID,
		Format: serverConfig(svcs.ConfigMgr).Defaults.AudioFormat,
		Books:  svcs.Books,
		Home:   svcs.Home,
		Logger: svcs.Logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID, err := svcs.JobManager.Submit(job, map[string]string{
		"page_id": page.ID,
		"book_id": page.BookID,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, GenerateAudioResponse{JobID: jobID})
}

func (e *PageAudioEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "page <page-id>",
		Short: "Queue audio combination for a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GenerateAudioResponse
			if err := client.Post(cmd.Context(), "/api/pages/"+args[0]+"/audio", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// serverConfig falls back to the built-in defaults when the server runs
// without a config manager.
func serverConfig(mgr *config.Manager) *config.Config {
	if mgr != nil {
		return mgr.Get()
	}
	return config.DefaultConfig()
}
