package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/medifed/portal/pkg/logger"
)

// Fixed responses. The assistant never surfaces an external failure to
// the caller; it degrades to these strings.
const (
	MsgEmptyPrompt = "Por favor, escribí una pregunta."
	MsgNoAnswer    = "No encontré una respuesta adecuada."
	MsgError       = "Hubo un error al procesar tu pregunta. Por favor intentá de nuevo."
)

// helpContext is the fixed knowledge passage the QA model extracts
// answers from. Process-wide configuration, never user-scoped.
const helpContext = `Bienvenido al centro de ayuda para la gestión de turnos médicos.

Reserva de Turnos:
Para reservar un turno, primero debes crear una cuenta e iniciar sesión en el "Portal de Pacientes". Una vez dentro, busca la sección "Turnos", elige la especialidad médica y luego selecciona un día y horario disponible en el calendario. El horario de atención para solicitar turnos es de lunes a viernes, de 8:00 a.m. a 12:00 p.m.

Cambio de Médico:
Para cambiar de médico, debes cancelar tu turno actual y luego solicitar uno nuevo. Durante el proceso de solicitar un nuevo turno, podrás seleccionar la especialidad y ver la lista de médicos disponibles para elegir el de tu preferencia.

Cambio de Día o de Hora:
Para cambiar el día o la hora de tu turno, el procedimiento es cancelar el turno que ya tienes y solicitar uno nuevo. Al solicitar el nuevo turno, el sistema te mostrará un calendario con todos los días y horarios disponibles para que puedas elegir el que más te convenga.

Cambio de Lugar:
El cambio de lugar o centro de atención se realiza al momento de solicitar un nuevo turno. Después de cancelar tu cita actual, inicia el proceso de reserva y el sistema te dará la opción de elegir entre los diferentes centros médicos disponibles.

Cancelación de Turnos:
Para cancelar un turno, debes ingresar al "Portal de Pacientes", dirigirte a la sección "Mis Turnos" y allí encontrarás la opción para cancelar la cita que ya no necesites.

Límites del Asistente:
Mi función es guiarte en el proceso. No puedo registrarte, iniciar sesión por ti, ni reservar o cancelar turnos en tu nombre. Si tienes preguntas sobre diagnósticos o costos, te recomiendo contactar directamente al centro médico, ya que mi especialidad es solo la gestión de turnos online.`

// Client calls an external extractive question-answering endpoint
// (Hugging Face inference API shape).
type Client struct {
	endpoint   string
	model      string
	token      string
	httpClient *http.Client
}

// New creates an assistant client. endpoint is the inference API base
// URL, model the hosted QA model id, token an optional bearer token.
func New(endpoint, model, token string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		token:      token,
		httpClient: http.DefaultClient,
	}
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Answer runs one QA turn over the fixed help passage. Empty questions
// short-circuit without touching the external capability; every failure
// past that point is masked with a fixed message.
func (c *Client) Answer(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return MsgEmptyPrompt
	}
	answer, err := c.ask(ctx, question)
	if err != nil {
		logger.Warnf("assistant: QA call failed: %v", err)
		return MsgError
	}
	if answer == "" {
		return MsgNoAnswer
	}
	return answer
}

func (c *Client) ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(qaRequest{Inputs: qaInputs{Question: question, Context: helpContext}})
	if err != nil {
		return "", err
	}
	url := c.endpoint + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("qa endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var qr qaResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return "", err
	}
	return strings.TrimSpace(qr.Answer), nil
}

// FAQs returns the fixed list of suggested questions.
func FAQs() []string {
	return []string{
		"Como reservo turno?",
		"Como cambio de medico?",
		"Como cambio de dia?",
		"Como cambio de hora?",
		"Como cambio de lugar?",
		"Como cancelo turno?",
	}
}
