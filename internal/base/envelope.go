// Package base defines the wire-level task and result envelope shapes
// shared by the packer, broker, and backend packages, mirroring the role
// the teacher's internal/base package plays for its own message shape.
package base

import "strings"

// KeyPrefix is the constant prefix Redis result keys are scoped by.
const KeyPrefix = "celery-task-meta-"

// ResultKey returns the Redis key a result for taskID is stored/published
// under.
func ResultKey(taskID string) string {
	return KeyPrefix + taskID
}

// DeliveryMode mirrors AMQP's delivery_mode property.
type DeliveryMode int

const (
	DeliveryModeTransient  DeliveryMode = 1
	DeliveryModePersistent DeliveryMode = 2
)

// BodyEncoding mirrors AMQP's properties.body_encoding field.
type BodyEncoding string

const (
	BodyEncodingBase64 BodyEncoding = "base64"
	BodyEncodingUTF8   BodyEncoding = "utf-8"
)

// DeliveryInfo carries the AMQP exchange/routing-key addressing pair.
type DeliveryInfo struct {
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
}

// Properties mirrors the task envelope's properties object.
type Properties struct {
	CorrelationID string       `json:"correlation_id"`
	ReplyTo       string       `json:"reply_to,omitempty"`
	DeliveryMode  DeliveryMode `json:"delivery_mode"`
	DeliveryInfo  DeliveryInfo `json:"delivery_info"`
	Priority      int          `json:"priority,omitempty"`
	BodyEncoding  BodyEncoding `json:"body_encoding"`
}

// TaskMessage is the envelope published to the broker. Body holds the
// packed (serialized, compressed, encoded) argument payload as an opaque
// string in the encoding named by Properties.BodyEncoding.
type TaskMessage struct {
	Body            string            `json:"body"`
	ContentEncoding string            `json:"content-encoding"`
	ContentType     string            `json:"content-type"`
	Headers         map[string]string `json:"headers,omitempty"`
	Properties      Properties        `json:"properties"`
}

// TaskState is the status a ResultMessage reports.
type TaskState string

const (
	StatePending  TaskState = "PENDING"
	StateReceived TaskState = "RECEIVED"
	StateStarted  TaskState = "STARTED"
	StateSuccess  TaskState = "SUCCESS"
	StateFailure  TaskState = "FAILURE"
	StateRevoked  TaskState = "REVOKED"
	StateRetry    TaskState = "RETRY"
)

// Done reports whether state is terminal: SUCCESS, FAILURE or REVOKED.
func (s TaskState) Done() bool {
	switch s {
	case StateSuccess, StateFailure, StateRevoked:
		return true
	default:
		return false
	}
}

// ResultMessage is the envelope read from the result backend.
type ResultMessage struct {
	TaskID     string          `json:"task_id"`
	Status     TaskState       `json:"status"`
	Result     interface{}     `json:"result"`
	Traceback  *string         `json:"traceback"`
	Children   []ResultMessage `json:"children"`
}

// TaskEmbed is the { callbacks, errbacks, chain, chord } structure
// embedded alongside args/kwargs in the packed task body.
type TaskEmbed struct {
	Callbacks []interface{} `json:"callbacks"`
	Errbacks  []interface{} `json:"errbacks"`
	Chain     []interface{} `json:"chain"`
	Chord     interface{}   `json:"chord"`
}

// TaskBody is the { args, kwargs, embed } value the packer serializes.
type TaskBody struct {
	Args   []interface{}          `json:"args"`
	Kwargs map[string]interface{} `json:"kwargs"`
	Embed  TaskEmbed              `json:"embed"`
}

// IsBlank reports whether s is empty or consists only of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
