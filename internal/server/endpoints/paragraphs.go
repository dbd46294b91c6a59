package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/diff"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// GetParagraphEndpoint handles GET /api/paragraphs/{id}.
type GetParagraphEndpoint struct{}

func (e *GetParagraphEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/paragraphs/{id}", e.handler
}

func (e *GetParagraphEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a paragraph
//	@Description	Get a paragraph's current and original text
//	@Tags			paragraphs
//	@Produce		json
//	@Param			id	path		string	true	"Paragraph ID"
//	@Success		200	{object}	books.Paragraph
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/paragraphs/{id} [get]
func (e *GetParagraphEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.BooksFrom(r.Context())
	p, err := store.GetParagraph(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *GetParagraphEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "paragraph <id>",
		Short: "Get a paragraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var p books.Paragraph
			if err := client.Get(cmd.Context(), "/api/paragraphs/"+args[0], &p); err != nil {
				return err
			}
			return api.Output(p)
		},
	}
}

// EditParagraphRequest is the body for PUT /api/paragraphs/{id}.
type EditParagraphRequest struct {
	Content           string `json:"content"`
	RecordCorrections bool   `json:"record_corrections"`
	Provider          string `json:"provider,omitempty"`
	Voice             string `json:"voice,omitempty"`
}

// EditParagraphEndpoint handles PUT /api/paragraphs/{id}.
type EditParagraphEndpoint struct{}

func (e *EditParagraphEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/paragraphs/{id}", e.handler
}

func (e *EditParagraphEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Edit a paragraph
//	@Description	Replace a paragraph's text, optionally recording word corrections and returning bulk-fix suggestions
//	@Tags			paragraphs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Paragraph ID"
//	@Param			request	body		EditParagraphRequest	true	"New content"
//	@Success		200		{object}	books.EditResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/paragraphs/{id} [put]
func (e *EditParagraphEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req EditParagraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	editor := svcctx.EditorFrom(r.Context())
	result, err := editor.Edit(r.Context(), books.EditRequest{
		ParagraphID:       r.PathValue("id"),
		Content:           req.Content,
		RecordCorrections: req.RecordCorrections,
		Provider:          req.Provider,
		Voice:             req.Voice,
	})
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *EditParagraphEndpoint) Command(getServerURL func() string) *cobra.Command {
	var content, provider, voice string
	var record bool
	cmd := &cobra.Command{
		Use:   "edit <paragraph-id>",
		Short: "Edit a paragraph's text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result books.EditResult
			err := client.Put(cmd.Context(), "/api/paragraphs/"+args[0], EditParagraphRequest{
				Content:           content,
				RecordCorrections: record,
				Provider:          provider,
				Voice:             voice,
			}, &result)
			if err != nil {
				return err
			}
			return api.Output(result)
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "New paragraph text (required)")
	cmd.Flags().BoolVar(&record, "record", true, "Record word-level corrections")
	cmd.Flags().StringVar(&provider, "provider", "", "TTS provider to attribute corrections to")
	cmd.Flags().StringVar(&voice, "voice", "", "TTS voice to attribute corrections to")
	cmd.MarkFlagRequired("content")
	return cmd
}

// DiffResponse is a paragraph's original text rendered against its current
// text as a token stream.
type DiffResponse struct {
	ParagraphID string       `json:"paragraph_id"`
	Tokens      []diff.Token `json:"tokens"`
}

// DiffParagraphEndpoint handles GET /api/paragraphs/{id}/diff.
type DiffParagraphEndpoint struct{}

func (e *DiffParagraphEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/paragraphs/{id}/diff", e.handler
}

func (e *DiffParagraphEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Diff a paragraph
//	@Description	Render the paragraph's original text against its current text as display tokens
//	@Tags			paragraphs
//	@Produce		json
//	@Param			id	path		string	true	"Paragraph ID"
//	@Success		200	{object}	DiffResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/paragraphs/{id}/diff [get]
func (e *DiffParagraphEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	editor := svcctx.EditorFrom(r.Context())
	id := r.PathValue("id")
	tokens, err := editor.Compare(r.Context(), id)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DiffResponse{ParagraphID: id, Tokens: tokens})
}

func (e *DiffParagraphEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <paragraph-id>",
		Short: "Show a paragraph's edits as a token diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DiffResponse
			if err := client.Get(cmd.Context(), "/api/paragraphs/"+args[0]+"/diff", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RevertParagraphEndpoint handles POST /api/paragraphs/{id}/revert.
type RevertParagraphEndpoint struct{}

func (e *RevertParagraphEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/paragraphs/{id}/revert", e.handler
}

func (e *RevertParagraphEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Revert a paragraph
//	@Description	Restore the paragraph's original text and clear its corrections
//	@Tags			paragraphs
//	@Produce		json
//	@Param			id	path		string	true	"Paragraph ID"
//	@Success		200	{object}	books.RevertResult
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/paragraphs/{id}/revert [post]
func (e *RevertParagraphEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	editor := svcctx.EditorFrom(r.Context())
	result, err := editor.Revert(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *RevertParagraphEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <paragraph-id>",
		Short: "Restore a paragraph's original text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result books.RevertResult
			if err := client.Post(cmd.Context(), "/api/paragraphs/"+args[0]+"/revert", nil, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
}
