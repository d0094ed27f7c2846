package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tanq16/dlprobe/internal/output"
	"github.com/tanq16/dlprobe/internal/utils"
)

// Prober sends download requests to one endpoint and traces every
// exchange to its printer.
type Prober struct {
	endpoint string
	timeout  time.Duration
	client   utils.HTTPDoer
	printer  *output.Printer
	log      zerolog.Logger
}

func New(endpoint string, cfg utils.HTTPClientConfig, printer *output.Printer) *Prober {
	client := utils.NewProbeHTTPClient(cfg)
	return NewWithClient(endpoint, client.Timeout(), client, printer)
}

// NewWithClient uses client as is; timeout is only reported in the trace.
func NewWithClient(endpoint string, timeout time.Duration, client utils.HTTPDoer, printer *output.Printer) *Prober {
	if printer == nil {
		printer = output.NewPrinter(nil)
	}
	return &Prober{
		endpoint: endpoint,
		timeout:  timeout,
		client:   client,
		printer:  printer,
		log:      utils.GetLogger("probe"),
	}
}

// Send posts payload to endpoint once with the given timeout, writing the
// trace to stdout.
func Send(ctx context.Context, endpoint string, payload utils.DownloadRequest, timeout time.Duration) Result {
	return New(endpoint, utils.HTTPClientConfig{Timeout: timeout}, nil).Send(ctx, payload)
}

func (p *Prober) Printer() *output.Printer {
	return p.printer
}

// Send issues a single POST of payload and classifies the outcome. It never
// panics and never returns an error; failures are carried in the Result.
func (p *Prober) Send(ctx context.Context, payload utils.DownloadRequest) (res Result) {
	res = Result{RequestID: uuid.NewString(), Started: time.Now()}
	defer p.recoverInto(&res)

	p.printer.Info(fmt.Sprintf("Sending download request to %s", p.endpoint))
	body, err := json.Marshal(payload)
	if err != nil {
		return p.finish(res, KindUnexpected, fmt.Sprintf("encoding payload: %v", err), err)
	}
	pretty, _ := json.MarshalIndent(payload, "", "  ")
	p.printer.Debug("Request data: " + string(pretty))
	if payload.FileSize > 0 {
		p.printer.Debug("File size: " + output.FormatBytes(uint64(payload.FileSize)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return p.finish(res, KindUnexpected, fmt.Sprintf("building request: %v", err), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(utils.RequestIDHeader, res.RequestID)
	return p.exchange(req, res)
}

// Status issues a GET against the server's status path.
func (p *Prober) Status(ctx context.Context) (res Result) {
	res = Result{RequestID: uuid.NewString(), Started: time.Now()}
	defer p.recoverInto(&res)

	statusURL, err := utils.StatusURL(p.endpoint)
	if err != nil {
		return p.finish(res, KindUnexpected, fmt.Sprintf("building status url: %v", err), err)
	}
	p.printer.Info(fmt.Sprintf("Checking server status at %s", statusURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return p.finish(res, KindUnexpected, fmt.Sprintf("building request: %v", err), err)
	}
	req.Header.Set(utils.RequestIDHeader, res.RequestID)
	return p.exchange(req, res)
}

func (p *Prober) exchange(req *http.Request, res Result) Result {
	var connected atomic.Bool
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { connected.Store(true) },
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	p.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_id", res.RequestID).Msg("sending request")
	resp, err := p.client.Do(req)
	if err != nil {
		return p.finish(res, classifyTransportError(err, connected.Load()), err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, utils.MaxBodyBytes+1))
	if err != nil {
		return p.finish(res, classifyBodyError(err), fmt.Sprintf("reading response body: %v", err), err)
	}
	if len(raw) > utils.MaxBodyBytes {
		raw = raw[:utils.MaxBodyBytes]
		res.Truncated = true
	}
	res.StatusCode = resp.StatusCode
	res.Body = string(raw)
	p.printer.Debug(fmt.Sprintf("Response status code: %d", resp.StatusCode))
	for _, line := range output.WrapText("Response body: "+output.IndentJSON(raw), 2) {
		p.printer.Debug(line)
	}
	if res.Truncated {
		p.printer.Warning(fmt.Sprintf("Response body truncated to %s", output.FormatBytes(utils.MaxBodyBytes)))
	}
	if resp.StatusCode == http.StatusOK {
		return p.finish(res, KindSuccess, "request sent successfully", nil)
	}
	return p.finish(res, KindHTTPError, fmt.Sprintf("request failed: %d", resp.StatusCode), nil)
}

func (p *Prober) finish(res Result, kind Kind, message string, err error) Result {
	res.Kind = kind
	res.Message = message
	res.Err = err
	res.Finished = time.Now()
	ev := p.log.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("request_id", res.RequestID).Str("kind", kind.String()).Int("status", res.StatusCode).
		Dur("elapsed", res.Duration()).Msg("probe finished")
	p.report(res)
	return res
}

func (p *Prober) recoverInto(res *Result) {
	if r := recover(); r != nil {
		*res = p.finish(*res, KindUnexpected, fmt.Sprintf("%v", r), fmt.Errorf("panic: %v", r))
	}
}

func (p *Prober) report(res Result) {
	pass := output.StyleSymbols["pass"]
	fail := output.StyleSymbols["fail"]
	switch res.Kind {
	case KindSuccess:
		p.printer.Success(fmt.Sprintf("%s Request sent successfully", pass))
	case KindHTTPError:
		p.printer.Error(fmt.Sprintf("%s Request failed: %d", fail, res.StatusCode))
	case KindConnectionFailure:
		port, err := utils.EndpointPort(p.endpoint)
		where := utils.HostPort(p.endpoint)
		if err != nil {
			p.printer.Error(fmt.Sprintf("%s Cannot connect to server at %s; the download manager may not be running", fail, where))
			return
		}
		p.printer.Error(fmt.Sprintf("%s Cannot connect to server at %s; the download manager may not be running or listening on port %d", fail, where, port))
	case KindTimeout:
		p.printer.Error(fmt.Sprintf("%s Request timed out after %s", fail, p.timeout))
	default:
		p.printer.Error(fmt.Sprintf("%s Unexpected error: %s", fail, res.Message))
	}
}
