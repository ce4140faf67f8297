package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/pkg/model"
)

const totalCountHeader = "X-Total-Count"

// HTTP reads records from a JSON REST API following the json-server
// conventions: GET base/resource?_start=&_end=&_sort=&_order=&field=value
// for lists and GET base/resource/id for single records.
type HTTP struct {
	base     *url.URL
	client   *http.Client
	envelope string
	headers  http.Header
	logger   logrus.FieldLogger
}

// HTTPOption customises an HTTP provider.
type HTTPOption func(*HTTP)

// WithHTTPClient injects the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTP) {
		if client != nil {
			p.client = client
		}
	}
}

// WithEnvelope reads records from a dot path of the response body, such as
// "data", instead of the body root.
func WithEnvelope(path string) HTTPOption {
	return func(p *HTTP) {
		p.envelope = strings.TrimSpace(path)
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(p *HTTP) {
		p.headers.Add(key, value)
	}
}

// WithHTTPLogger sets the logger receiving request entries.
func WithHTTPLogger(logger logrus.FieldLogger) HTTPOption {
	return func(p *HTTP) {
		p.logger = logger
	}
}

// NewHTTP builds a provider rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("dataprovider: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("dataprovider: base url %q must use http or https", baseURL)
	}
	p := &HTTP{
		base:    base,
		client:  http.DefaultClient,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = logging.OrDiscard(p.logger)
	return p, nil
}

// GetList fetches one page of resource.
func (p *HTTP) GetList(ctx context.Context, resource string, params ListParams) (ListResult, error) {
	start, end := params.Range()
	query := url.Values{}
	query.Set("_start", strconv.Itoa(start))
	query.Set("_end", strconv.Itoa(end))
	if params.Sort.Field != "" {
		query.Set("_sort", params.Sort.Field)
		query.Set("_order", normalizeOrder(params.Sort.Order))
	}
	for _, key := range sortedKeys(params.Filter) {
		query.Set(key, cast.ToString(params.Filter[key]))
	}

	body, header, err := p.get(ctx, p.endpoint(resource), query)
	if err != nil {
		return ListResult{}, err
	}
	records, err := p.decodeList(body)
	if err != nil {
		return ListResult{}, fmt.Errorf("dataprovider: %s list: %w", resource, err)
	}

	total := len(records)
	if raw := header.Get(totalCountHeader); raw != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			total = parsed
		}
	}
	return ListResult{Records: records, Total: total}, nil
}

// GetOne fetches a single record.
func (p *HTTP) GetOne(ctx context.Context, resource string, id any) (*model.Record, error) {
	body, _, err := p.get(ctx, p.endpoint(resource, cast.ToString(id)), nil)
	if err != nil {
		return nil, err
	}
	value, err := p.unwrap(body)
	if err != nil {
		return nil, fmt.Errorf("dataprovider: %s/%v: %w", resource, id, err)
	}
	record, ok := value.(*model.Record)
	if !ok {
		return nil, fmt.Errorf("dataprovider: %s/%v: response is not an object", resource, id)
	}
	return record, nil
}

// GetManyReference lists records whose Target field equals ID.
func (p *HTTP) GetManyReference(ctx context.Context, resource string, params ManyReferenceParams) (ListResult, error) {
	if params.Target == "" {
		return ListResult{}, fmt.Errorf("dataprovider: many reference target is required")
	}
	return p.GetList(ctx, resource, withFilter(params.ListParams, params.Target, params.ID))
}

func (p *HTTP) endpoint(segments ...string) *url.URL {
	out := *p.base
	path := strings.TrimRight(out.Path, "/")
	for _, segment := range segments {
		path += "/" + url.PathEscape(segment)
	}
	out.Path = path
	out.RawPath = ""
	return &out
}

func (p *HTTP) get(ctx context.Context, endpoint *url.URL, query url.Values) ([]byte, http.Header, error) {
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dataprovider: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range p.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("dataprovider: GET %s: %w", endpoint.Redacted(), err)
	}
	defer resp.Body.Close()

	p.logger.WithFields(logrus.Fields{
		"url":    endpoint.Redacted(),
		"status": resp.StatusCode,
	}).Debug("dataprovider: fetched")

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("dataprovider: GET %s: unexpected status %d: %s", endpoint.Redacted(), resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("dataprovider: read body: %w", err)
	}
	return body, resp.Header, nil
}

func (p *HTTP) unwrap(body []byte) (any, error) {
	value, err := model.DecodeValue(body)
	if err != nil {
		return nil, err
	}
	if p.envelope == "" {
		return value, nil
	}
	record, ok := value.(*model.Record)
	if !ok {
		return nil, fmt.Errorf("envelope %q requires an object body", p.envelope)
	}
	inner, ok := record.Lookup(p.envelope)
	if !ok {
		return nil, fmt.Errorf("envelope %q not found", p.envelope)
	}
	return inner, nil
}

func (p *HTTP) decodeList(body []byte) ([]*model.Record, error) {
	value, err := p.unwrap(body)
	if err != nil {
		return nil, err
	}
	switch typed := value.(type) {
	case []any:
		records := make([]*model.Record, 0, len(typed))
		for idx, item := range typed {
			record, ok := item.(*model.Record)
			if !ok {
				return nil, fmt.Errorf("item %d is not an object", idx)
			}
			records = append(records, record)
		}
		return records, nil
	case *model.Record:
		return []*model.Record{typed}, nil
	case nil:
		return nil, nil
	default:
		return nil, errors.New("response is not a list of objects")
	}
}
