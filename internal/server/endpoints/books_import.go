package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/epub"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// maxEpubBytes caps uploaded ePub size.
const maxEpubBytes = 256 << 20

// ImportBookEndpoint handles POST /api/books/import.
type ImportBookEndpoint struct{}

func (e *ImportBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books/import", e.handler
}

func (e *ImportBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Import an ePub
//	@Description	Parse an uploaded ePub into a book with pages and paragraphs
//	@Tags			books
//	@Accept			octet-stream
//	@Produce		json
//	@Success		201	{object}	books.Book
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/books/import [post]
func (e *ImportBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEpubBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	parsed, err := epub.ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := svcctx.BooksFrom(r.Context())
	book, err := store.CreateBook(r.Context(), books.CreateBookInput{
		Title:    parsed.Title,
		Author:   parsed.Author,
		Language: parsed.Language,
		Pages:    parsed.Pages,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (e *ImportBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.epub>",
		Short: "Import an ePub file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				getServerURL()+"/api/books/import", f)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/octet-stream")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("server error (%d): %s", resp.StatusCode, body)
			}
			var book books.Book
			if err := json.Unmarshal(body, &book); err != nil {
				return err
			}
			return api.Output(book)
		},
	}
}
