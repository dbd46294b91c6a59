package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// ListPagesResponse is the response for listing a book's pages.
type ListPagesResponse struct {
	Pages []*books.Page `json:"pages"`
}

// ListPagesEndpoint handles GET /api/books/{id}/pages.
type ListPagesEndpoint struct{}

func (e *ListPagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books/{id}/pages", e.handler
}

func (e *ListPagesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List pages
//	@Description	List a book's pages in reading order
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Book ID"
//	@Success		200	{object}	ListPagesResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/books/{id}/pages [get]
func (e *ListPagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.BooksFrom(r.Context())
	id := r.PathValue("id")

	// 404 for unknown books rather than an empty list.
	if _, err := store.GetBook(r.Context(), id); err != nil {
		writeBookError(w, err)
		return
	}

	pages, err := store.ListPages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListPagesResponse{Pages: pages})
}

func (e *ListPagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <book-id>",
		Short: "List a book's pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListPagesResponse
			if err := client.Get(cmd.Context(), "/api/books/"+args[0]+"/pages", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// PageResponse is a page with its paragraphs.
type PageResponse struct {
	Page       *books.Page        `json:"page"`
	Paragraphs []*books.Paragraph `json:"paragraphs"`
}

// GetPageEndpoint handles GET /api/pages/{id}.
type GetPageEndpoint struct{}

func (e *GetPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/pages/{id}", e.handler
}

func (e *GetPageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a page
//	@Description	Get a page with its paragraphs in reading order
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	PageResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/pages/{id} [get]
func (e *GetPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.BooksFrom(r.Context())
	page, err := store.GetPage(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBookError(w, err)
		return
	}

	paragraphs, err := store.ListPageParagraphs(r.Context(), page.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{Page: page, Paragraphs: paragraphs})
}

func (e *GetPageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "page <id>",
		Short: "Get a page with its paragraphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PageResponse
			if err := client.Get(cmd.Context(), "/api/pages/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
