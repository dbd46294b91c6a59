package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// ExportCorrectionsEndpoint handles GET /api/corrections/export.
type ExportCorrectionsEndpoint struct{}

func (e *ExportCorrectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/corrections/export", e.handler
}

func (e *ExportCorrectionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export corrections
//	@Description	Stream the full correction ledger as JSON Lines
//	@Tags			corrections
//	@Produce		plain
//	@Success		200	{string}	string	"JSONL stream"
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/corrections/export [get]
func (e *ExportCorrectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ledger := svcctx.LedgerFrom(r.Context())
	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := ledger.ExportJSONL(r.Context(), w); err != nil {
		// Headers are already out; logging is all that's left.
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("correction export failed", "error", err)
		}
	}
}

func (e *ExportCorrectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the correction ledger as JSONL",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				getServerURL()+"/api/corrections/export", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error (%d)", resp.StatusCode)
			}
			_, err = io.Copy(out, resp.Body)
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

// ImportCorrectionsResponse reports how many ledger rows an import added.
type ImportCorrectionsResponse struct {
	Imported int `json:"imported"`
}

// ImportCorrectionsEndpoint handles POST /api/corrections/import.
type ImportCorrectionsEndpoint struct{}

func (e *ImportCorrectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/corrections/import", e.handler
}

func (e *ImportCorrectionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Import corrections
//	@Description	Import a JSONL correction ledger; every line is validated and the import is all-or-nothing
//	@Tags			corrections
//	@Accept			plain
//	@Produce		json
//	@Success		200	{object}	ImportCorrectionsResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/corrections/import [post]
func (e *ImportCorrectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ledger := svcctx.LedgerFrom(r.Context())
	n, err := ledger.ImportJSONL(r.Context(), r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ImportCorrectionsResponse{Imported: n})
}

func (e *ImportCorrectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSONL correction ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if inPath != "" {
				f, err := os.Open(inPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				getServerURL()+"/api/corrections/import", in)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/x-ndjson")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error (%d): %s", resp.StatusCode, body)
			}
			var result ImportCorrectionsResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Read from file instead of stdin")
	return cmd
}
