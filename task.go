package celery

import (
	"time"

	"github.com/celeryq/gocelery/internal/base"
	"github.com/celeryq/gocelery/internal/errors"
	"github.com/celeryq/gocelery/packer"
)

// Task names a remote unit of work this client's workers know how to run.
type Task struct {
	client *Client
	name   string
}

// ApplyOptions configures one ApplyAsync submission. A zero value submits
// with the client's default packer, transient delivery, default priority
// and no ETA/expiry.
type ApplyOptions struct {
	Args   []interface{}
	Kwargs map[string]interface{}

	ETA      *time.Time
	Expires  *time.Time
	Priority int
	Queue    string

	// Packer overrides the client's default serializer/compressor/encoder
	// pipeline for this submission only.
	Packer *packer.Packer
}

// ApplyAsync packs the task body, builds the envelope, and publishes it
// through the client's dispatcher, returning a Result handle for the
// generated task ID.
func (t *Task) ApplyAsync(opts ApplyOptions) (*Result, error) {
	const op = "celery.Task.ApplyAsync"

	if t.client.ended {
		return nil, errors.E(errors.Op(op), errors.Disconnected, ErrDisconnected)
	}

	p := opts.Packer
	if p == nil {
		p = t.client.packer
	}

	embed := base.TaskEmbed{
		Callbacks: []interface{}{},
		Errbacks:  []interface{}{},
		Chain:     []interface{}{},
	}
	body := base.TaskBody{
		Args:   opts.Args,
		Kwargs: opts.Kwargs,
		Embed:  embed,
	}
	if body.Args == nil {
		body.Args = []interface{}{}
	}
	if body.Kwargs == nil {
		body.Kwargs = map[string]interface{}{}
	}

	packed, err := p.Pack([]interface{}{body.Args, body.Kwargs, body.Embed})
	if err != nil {
		return nil, wrapOp(op, err)
	}

	taskID := newUUID()
	queue := opts.Queue
	if queue == "" {
		queue = "celery"
	}

	bodyEncoding := base.BodyEncodingBase64
	if p.Encoder.Name() == "plaintext" {
		bodyEncoding = base.BodyEncodingUTF8
	}

	headers := map[string]string{"task": t.name}
	if opts.ETA != nil {
		headers["eta"] = opts.ETA.UTC().Format(time.RFC3339Nano)
	}
	if opts.Expires != nil {
		headers["expires"] = opts.Expires.UTC().Format(time.RFC3339Nano)
	}

	msg := base.TaskMessage{
		Body:            packed,
		ContentEncoding: "utf-8",
		ContentType:     p.ContentType(),
		Headers:         headers,
		Properties: base.Properties{
			CorrelationID: taskID,
			ReplyTo:       t.client.id,
			DeliveryMode:  base.DeliveryModeTransient,
			DeliveryInfo: base.DeliveryInfo{
				Exchange:   "",
				RoutingKey: queue,
			},
			Priority:     opts.Priority,
			BodyEncoding: bodyEncoding,
		},
	}

	if err := t.client.dispatcher.Publish(msg, taskID); err != nil {
		return nil, wrapOp(op, err)
	}

	return &Result{client: t.client, taskID: taskID}, nil
}
