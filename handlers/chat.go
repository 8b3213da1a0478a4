package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/assistant"
	"github.com/medifed/portal/pkg/metrics"
)

// ChatRequest carries the user's question.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// Answerer resolves a question to a reply. Satisfied by assistant.Client.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// ChatHandler serves the help assistant.
type ChatHandler struct {
	assistant Answerer
}

func NewChatHandler(a Answerer) *ChatHandler {
	return &ChatHandler{assistant: a}
}

func (h *ChatHandler) Register(r *gin.Engine, pageGuard, apiGuard gin.HandlerFunc) {
	r.GET("/chat", pageGuard, h.ChatPage)
	r.POST("/chat", apiGuard, h.Chat)
	r.GET("/faqs", h.FAQs)
}

func (h *ChatHandler) ChatPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, chatHTML)
}

// Chat answers a single question. Always replies 200 with a usable
// message; backend problems surface as the fixed fallback text.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"response": assistant.MsgEmptyPrompt})
		return
	}

	resp := h.assistant.Answer(c.Request.Context(), req.Prompt)
	switch resp {
	case assistant.MsgEmptyPrompt:
		metrics.AssistantRequests.WithLabelValues("empty").Inc()
	case assistant.MsgError:
		metrics.AssistantRequests.WithLabelValues("error").Inc()
	case assistant.MsgNoAnswer:
		metrics.AssistantRequests.WithLabelValues("no_answer").Inc()
	default:
		metrics.AssistantRequests.WithLabelValues("answered").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"response": resp})
}

// FAQs lists the suggested questions shown in the chat page.
func (h *ChatHandler) FAQs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faqs": assistant.FAQs()})
}

const chatHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Asistente Medifed</title></head>
<body><h2>Asistente</h2>
<div id="mensajes"></div>
<form id="chat">
  <input type="text" name="prompt" placeholder="Escribí tu pregunta">
  <button type="submit">Enviar</button>
</form>
</body></html>`
