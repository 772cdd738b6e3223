package apiclient

import (
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/kybkit/kybclient/logger"
)

// leveledLogger adapts logger.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logger.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	withKeysAndValues(l.log.Error(), keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	withKeysAndValues(l.log.Info(), keysAndValues).Msg(msg)
}

// Debug is where retryablehttp reports every attempt; keep it at debug.
func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	withKeysAndValues(l.log.Debug(), keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	withKeysAndValues(l.log.Warn(), keysAndValues).Msg(msg)
}

func withKeysAndValues(event logger.LogEvent, kv []any) logger.LogEvent {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case error:
			event = event.Str(key, v.Error())
		default:
			event = event.Interface(key, v)
		}
	}
	return event
}

// logRetry is installed as retryablehttp.Client.RequestLogHook.
func (c *client) logRetry(_ retryablehttp.Logger, req *nethttp.Request, retry int) {
	if retry == 0 {
		return
	}
	c.logger.Warn().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("attempt", retry+1).
		Msg("REST client retry")
}

// logRequest logs the outgoing request
func (c *client) logRequest(method, url string, req *Request) {
	c.logger.Info().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", url).
		Msg("REST client request")

	if !c.config.LogPayloads {
		return
	}
	debug := c.logger.Debug().
		Str("method", method).
		Str("url", url)
	if len(req.Headers) > 0 {
		debug = debug.Interface("headers", req.Headers)
	}
	if len(req.Body) > 0 {
		debug = debug.Bytes("body", c.truncate(req.Body))
	}
	debug.Msg("REST client request payload")
}

// logResponse logs the incoming response
func (c *client) logResponse(method, url string, resp *Response) {
	c.logger.Info().
		Str("direction", "inbound").
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Int("attempts", resp.Stats.Attempts).
		Msg("REST client response")

	if !c.config.LogPayloads {
		return
	}
	debug := c.logger.Debug().
		Int("status", resp.StatusCode).
		Interface("headers", resp.Headers)
	if len(resp.Body) > 0 {
		debug = debug.Bytes("body", c.truncate(resp.Body))
	}
	debug.Msg("REST client response payload")
}

func (c *client) truncate(body []byte) []byte {
	limit := c.config.MaxPayloadLogBytes
	if limit <= 0 || len(body) <= limit {
		return body
	}
	return body[:limit]
}
