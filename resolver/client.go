package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	"github.com/bluele/gcache"
	"github.com/tryfix/log"
)

const (
	didLDJson      = `application/did+ld+json`
	identifierPath = `/1.0/identifiers/`
	didPlaceholder = `{did}`
)

// Client looks a did up on the external resolver service. It is stateless
// per call apart from an optional cache of successful resolutions and
// performs exactly one lookup attempt per request.
type Client struct {
	base     string
	baseURL  *url.URL
	hc       *http.Client
	cache    gcache.Cache
	cacheTTL time.Duration
	log      log.Logger
}

func NewClient(cfg *domain.Config, logger log.Logger) (*Client, error) {
	u, err := url.Parse(cfg.ResolverURL)
	if err != nil {
		return nil, fmt.Errorf(`resolver base url is invalid - %v`, err)
	}

	if u.Scheme != `http` && u.Scheme != `https` {
		return nil, fmt.Errorf(`resolver base url has an unsupported scheme (%s)`, u.Scheme)
	}

	c := &Client{
		base:     cfg.ResolverURL,
		baseURL:  u,
		hc:       &http.Client{Timeout: cfg.Timeout},
		cacheTTL: cfg.CacheTTL,
		log:      logger,
	}

	if cfg.CacheSize > 0 {
		c.cache = gcache.New(cfg.CacheSize).LRU().Build()
	}

	return c, nil
}

// Resolve maps the outcome of the backend call to a result value; a did
// rejected by the resolver yields invalid-did whereas network errors,
// timeouts and server faults yield resolver-unavailable.
func (c *Client) Resolve(ctx context.Context, did string) models.Result {
	if c.cache != nil {
		if val, err := c.cache.Get(did); err == nil {
			if doc, ok := val.(json.RawMessage); ok {
				c.log.Trace(fmt.Sprintf(`resolution of %s served from cache`, did))
				return models.Resolved(doc)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(did), nil)
	if err != nil {
		return models.Failed(domain.FailInvalidDid, fmt.Sprintf(`constructing resolver request failed - %v`, err))
	}
	req.Header.Add(`Accept`, didLDJson)

	res, err := c.hc.Do(req)
	if err != nil {
		return models.Failed(domain.FailResolverUnavailable, fmt.Sprintf(`resolver request for %s failed - %v`, did, err))
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return models.Failed(domain.FailResolverUnavailable, fmt.Sprintf(`reading resolver response failed - %v`, err))
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		doc, err := document(body)
		if err != nil {
			return models.Failed(domain.FailInvalidDid, fmt.Sprintf(`resolver returned an unparseable document for %s - %v`, did, err))
		}

		if c.cache != nil {
			if err = c.cache.SetWithExpire(did, doc, c.cacheTTL); err != nil {
				c.log.Warn(fmt.Sprintf(`caching resolution of %s failed - %v`, did, err))
			}
		}
		return models.Resolved(doc)
	case res.StatusCode >= 400 && res.StatusCode < 500:
		return models.Failed(domain.FailInvalidDid, fmt.Sprintf(`resolver rejected %s with status %d`, did, res.StatusCode))
	default:
		return models.Failed(domain.FailResolverUnavailable, fmt.Sprintf(`resolver responded for %s with status %d`, did, res.StatusCode))
	}
}

// resolveURL supports both a base url (joined with the universal resolver
// identifier path) and a template url containing a {did} placeholder.
func (c *Client) resolveURL(did string) string {
	if strings.Contains(c.base, didPlaceholder) {
		return strings.Replace(c.base, didPlaceholder, did, 1)
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, identifierPath, did)
	return u.String()
}

// document unwraps a resolution envelope if the body carries one and
// returns the body itself when it is a plain did document.
func document(body []byte) (json.RawMessage, error) {
	var envelope struct {
		DidDocument json.RawMessage `json:"didDocument"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf(`unmarshalling resolver response failed - %v`, err)
	}

	if len(envelope.DidDocument) > 0 && string(envelope.DidDocument) != `null` {
		return envelope.DidDocument, nil
	}

	return body, nil
}
