package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// ListProvidersResponse names the registered TTS providers.
type ListProvidersResponse struct {
	Providers []string `json:"providers"`
}

// ListProvidersEndpoint handles GET /api/providers.
type ListProvidersEndpoint struct{}

func (e *ListProvidersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/providers", e.handler
}

func (e *ListProvidersEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List TTS providers
//	@Description	List the registered text-to-speech providers
//	@Tags			providers
//	@Produce		json
//	@Success		200	{object}	ListProvidersResponse
//	@Router			/api/providers [get]
func (e *ListProvidersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "provider registry not initialized")
		return
	}
	writeJSON(w, http.StatusOK, ListProvidersResponse{Providers: registry.List()})
}

func (e *ListProvidersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered TTS providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListProvidersResponse
			if err := client.Get(cmd.Context(), "/api/providers", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListVoicesResponse is a provider's available voices.
type ListVoicesResponse struct {
	Provider string            `json:"provider"`
	Voices   []providers.Voice `json:"voices"`
}

// ListVoicesEndpoint handles GET /api/providers/{name}/voices.
type ListVoicesEndpoint struct{}

func (e *ListVoicesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/providers/{name}/voices", e.handler
}

func (e *ListVoicesEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List voices
//	@Description	List the voices a TTS provider offers
//	@Tags			providers
//	@Produce		json
//	@Param			name	path		string	true	"Provider name"
//	@Success		200		{object}	ListVoicesResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		501		{object}	ErrorResponse
//	@Router			/api/providers/{name}/voices [get]
func (e *ListVoicesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "provider registry not initialized")
		return
	}

	name := r.PathValue("name")
	provider, err := registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	lister, ok := provider.(providers.VoicesLister)
	if !ok {
		writeError(w, http.StatusNotImplemented, "provider does not enumerate voices")
		return
	}

	voices, err := lister.ListVoices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListVoicesResponse{Provider: name, Voices: voices})
}

func (e *ListVoicesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "voices <provider>",
		Short: "List a TTS provider's voices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListVoicesResponse
			if err := client.Get(cmd.Context(), "/api/providers/"+args[0]+"/voices", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
