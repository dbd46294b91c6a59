package endpoints

import (
	"github.com/jackzampolin/lectern/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Book endpoints
		&CreateBookEndpoint{},
		&ImportBookEndpoint{},
		&ListBooksEndpoint{},
		&GetBookEndpoint{},
		&DeleteBookEndpoint{},

		// Page endpoints
		&ListPagesEndpoint{},
		&GetPageEndpoint{},

		// Paragraph endpoints
		&GetParagraphEndpoint{},
		&EditParagraphEndpoint{},
		&DiffParagraphEndpoint{},
		&RevertParagraphEndpoint{},

		// Correction endpoints
		&AggregateCorrectionsEndpoint{},
		&KeyCorrectionsEndpoint{},
		&CorrectionHistoryEndpoint{},
		&DeleteCorrectionsEndpoint{},
		&ExportCorrectionsEndpoint{},
		&ImportCorrectionsEndpoint{},

		// Audio endpoints
		&ParagraphAudioEndpoint{},
		&PageAudioEndpoint{},

		// Job endpoints
		&ListJobsEndpoint{},
		&GetJobEndpoint{},
		&CancelJobEndpoint{},

		// Provider endpoints
		&ListProvidersEndpoint{},
		&ListVoicesEndpoint{},
	}
}
