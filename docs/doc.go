// Package docs provides generated OpenAPI documentation.
//
// Lectern API
//
//	@title			Lectern API
//	@version		1.0
//	@description	Audiobook text-correction API for editing paragraphs, tracking corrections, and generating audio.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/lectern
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:4400
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/lectern/serve.go -o ./swagger --parseDependency --parseInternal
