package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogModel describes one known upstream LLM.
type CatalogModel struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// modelCatalog lists the upstream models tenants can register against.
var modelCatalog = []CatalogModel{
	{Name: "gpt-4", Provider: "openai"},
	{Name: "gpt-4-turbo", Provider: "openai"},
	{Name: "gpt-4-1106", Provider: "openai"},
	{Name: "gpt-4-vision", Provider: "openai"},
	{Name: "gpt-3.5-turbo-0125", Provider: "openai"},
	{Name: "gpt-3.5-turbo", Provider: "openai"},
	{Name: "gpt-3.5-turbo-1106", Provider: "openai"},
	{Name: "gpt-3.5-turbo-instruct", Provider: "openai"},
	{Name: "gpt-3.5-turbo-16k", Provider: "openai"},
	{Name: "gpt-3.5-turbo-0613", Provider: "openai"},
	{Name: "gpt-3.5-turbo-16k-0613", Provider: "openai"},
	{Name: "babbage-002", Provider: "openai"},
	{Name: "davinci-002", Provider: "openai"},
	{Name: "claude-instant-1.2", Provider: "anthropic"},
	{Name: "claude-2", Provider: "anthropic"},
	{Name: "claude-2.1", Provider: "anthropic"},
	{Name: "command-light", Provider: "cohere"},
	{Name: "command-light-nightly", Provider: "cohere"},
	{Name: "command", Provider: "cohere"},
	{Name: "command-nightly", Provider: "cohere"},
}

// CatalogHandler serves the static model catalog.
type CatalogHandler struct{}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Models handles GET /v1/models.
func (h *CatalogHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": modelCatalog})
}
