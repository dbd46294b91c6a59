package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/corrections"
	"github.com/jackzampolin/lectern/internal/diff"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// AggregateResponse is the response for the correction aggregation view.
type AggregateResponse struct {
	Groups []*corrections.Group `json:"groups"`
}

// AggregateCorrectionsEndpoint handles GET /api/corrections/aggregate.
type AggregateCorrectionsEndpoint struct{}

func (e *AggregateCorrectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/corrections/aggregate", e.handler
}

func (e *AggregateCorrectionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Aggregate corrections
//	@Description	Group latest corrections by root and corrected word across all books
//	@Tags			corrections
//	@Produce		json
//	@Param			min_occurrences	query		int	false	"Minimum fixes per group"
//	@Param			limit			query		int	false	"Maximum groups returned"
//	@Success		200				{object}	AggregateResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Router			/api/corrections/aggregate [get]
func (e *AggregateCorrectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var filter corrections.GroupFilter
	var err error
	if filter.MinOccurrences, err = queryInt(r, "min_occurrences", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Limit, err = queryInt(r, "limit", -1); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := svcctx.CorrectionsFrom(r.Context())
	groups, err := q.ByAggregationKey(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AggregateResponse{Groups: groups})
}

func (e *AggregateCorrectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var minOccurrences, limit int
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Group corrections by word pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if minOccurrences > 0 {
				params.Set("min_occurrences", strconv.Itoa(minOccurrences))
			}
			if limit >= 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			path := "/api/corrections/aggregate"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp AggregateResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&minOccurrences, "min-occurrences", 0, "Minimum fixes per group")
	cmd.Flags().IntVar(&limit, "limit", -1, "Maximum groups returned (-1 = all)")
	return cmd
}

// KeyCorrectionsResponse is the drill-down for one aggregation key.
type KeyCorrectionsResponse struct {
	AggregationKey string                       `json:"aggregation_key"`
	Corrections    []*corrections.KeyCorrection `json:"corrections"`
}

// KeyCorrectionsEndpoint handles GET /api/corrections/key.
type KeyCorrectionsEndpoint struct{}

func (e *KeyCorrectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/corrections/key", e.handler
}

func (e *KeyCorrectionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Corrections for a key
//	@Description	List every latest correction behind one aggregation key, with book and paragraph context
//	@Tags			corrections
//	@Produce		json
//	@Param			key	query		string	true	"Aggregation key (root|corrected)"
//	@Success		200	{object}	KeyCorrectionsResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/corrections/key [get]
func (e *KeyCorrectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key query parameter is required")
		return
	}

	q := svcctx.CorrectionsFrom(r.Context())
	list, err := q.CorrectionsForKey(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, KeyCorrectionsResponse{AggregationKey: key, Corrections: list})
}

func (e *KeyCorrectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "key <aggregation-key>",
		Short: "List corrections behind one aggregation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp KeyCorrectionsResponse
			path := "/api/corrections/key?key=" + url.QueryEscape(args[0])
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// HistoryResponse is one word's full fix chain within a paragraph.
type HistoryResponse struct {
	ParagraphID string                `json:"paragraph_id"`
	RootWord    string                `json:"root_word"`
	History     []*corrections.Record `json:"history"`
}

// CorrectionHistoryEndpoint handles GET /api/paragraphs/{id}/corrections.
type CorrectionHistoryEndpoint struct{}

func (e *CorrectionHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/paragraphs/{id}/corrections", e.handler
}

func (e *CorrectionHistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Correction history
//	@Description	List a word's fix chain within one paragraph, oldest first
//	@Tags			corrections
//	@Produce		json
//	@Param			id		path		string	true	"Paragraph ID"
//	@Param			word	query		string	true	"Root word the chain is tracked under"
//	@Success		200		{object}	HistoryResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/paragraphs/{id}/corrections [get]
func (e *CorrectionHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, "word query parameter is required")
		return
	}
	id := r.PathValue("id")

	ledger := svcctx.LedgerFrom(r.Context())
	history, err := ledger.History(r.Context(), id, word)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{ParagraphID: id, RootWord: word, History: history})
}

func (e *CorrectionHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var word string
	cmd := &cobra.Command{
		Use:   "history <paragraph-id>",
		Short: "Show a word's fix chain within a paragraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HistoryResponse
			path := "/api/paragraphs/" + args[0] + "/corrections?word=" + url.QueryEscape(word)
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&word, "word", "", "Root word (required)")
	cmd.MarkFlagRequired("word")
	return cmd
}

// DeleteCorrectionsResponse reports how many ledger rows a delete removed.
type DeleteCorrectionsResponse struct {
	Deleted int `json:"deleted"`
}

// DeleteCorrectionsEndpoint handles DELETE /api/corrections.
type DeleteCorrectionsEndpoint struct{}

func (e *DeleteCorrectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/corrections", e.handler
}

func (e *DeleteCorrectionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete corrections
//	@Description	Delete ledger rows by book, paragraph, or fix type; at least one filter is required
//	@Tags			corrections
//	@Produce		json
//	@Param			book_id			query		string	false	"Book ID"
//	@Param			paragraph_id	query		string	false	"Paragraph ID"
//	@Param			fix_type		query		string	false	"Fix type"
//	@Success		200				{object}	DeleteCorrectionsResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Router			/api/corrections [delete]
func (e *DeleteCorrectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	filter := corrections.DeleteFilter{
		BookID:      r.URL.Query().Get("book_id"),
		ParagraphID: r.URL.Query().Get("paragraph_id"),
		FixType:     diff.FixType(r.URL.Query().Get("fix_type")),
	}

	ledger := svcctx.LedgerFrom(r.Context())
	deleted, err := ledger.Delete(r.Context(), filter)
	if err != nil {
		if errors.Is(err, corrections.ErrEmptyDeleteFilter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, DeleteCorrectionsResponse{Deleted: deleted})
}

func (e *DeleteCorrectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var bookID, paragraphID, fixType string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete corrections by book, paragraph, or fix type",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if bookID != "" {
				params.Set("book_id", bookID)
			}
			if paragraphID != "" {
				params.Set("paragraph_id", paragraphID)
			}
			if fixType != "" {
				params.Set("fix_type", fixType)
			}

			client := api.NewClient(getServerURL())
			var resp DeleteCorrectionsResponse
			if err := client.Delete(cmd.Context(), "/api/corrections?"+params.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&bookID, "book", "", "Book ID")
	cmd.Flags().StringVar(&paragraphID, "paragraph", "", "Paragraph ID")
	cmd.Flags().StringVar(&fixType, "fix-type", "", "Fix type (vowelization, punctuation, expansion, disambiguation, default)")
	return cmd
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
