package lxtax

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// contains the client for the exchange REST API

const (
	apiBase     = "https://api.ledgerx.com"
	tradingBase = "https://trade.ledgerx.com/api"
)

// diskCache caches GET responses under os.TempDir. Account history is
// large, append-only and paginated, so replaying a year must not mean
// re-downloading it; keys fold in the current UTC day, which expires
// the cache daily with no eviction logic.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", time.Now().UTC().Format("2006-01-02"), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		// error responses ride through uncached
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get replays the cached response for key, if any.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores the full dump of resp under key, leaving resp readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0o644)
}

// Client talks to the exchange REST API, authenticated with an API key.
// Responses are cached on disk with daily expiry, so repeated runs over
// the same history do not hammer the exchange.
type Client struct {
	apiKey string
	http   *http.Client
}

// NewClient returns a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return &Client{apiKey: apiKey, http: client}
}

// jwget performs an authenticated HTTP GET request and unmarshals the
// JSON response into the provided data structure.
func (c *Client) jwget(addr string, data interface{}) error {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "JWT "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// pager is the common shape of all paginated endpoint payloads.
type pager interface {
	NextURL() string
}

// forEachPage fetches addr and every subsequent page it links to,
// decoding each page into a fresh payload and handing it to visit.
func forEachPage[T any, P interface {
	pager
	*T
}](c *Client, addr string, visit func(P) error) error {
	for addr != "" {
		payload := P(new(T))
		if err := c.jwget(addr, payload); err != nil {
			return err
		}
		if err := visit(payload); err != nil {
			return err
		}
		next := payload.NextURL()
		if next == addr {
			return fmt.Errorf("endpoint %v points its next page at itself", addr)
		}
		addr = next
	}
	return nil
}

// FetchContract implements ContractResolver against the contract detail
// endpoint.
func (c *Client) FetchContract(id string) (*Contract, error) {
	var jobj any
	addr := fmt.Sprintf("%s/trading/contracts/%s", tradingBase, id)
	if err := c.jwget(addr, &jobj); err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get("$.data", jobj)
	if err != nil {
		return nil, fmt.Errorf("no data envelope in contract %s response: %w", id, err)
	}
	raw, err := json.Marshal(jval)
	if err != nil {
		return nil, err
	}
	contract := new(Contract)
	if err := json.Unmarshal(raw, contract); err != nil {
		return nil, fmt.Errorf("decoding contract %s: %w", id, err)
	}
	return contract, nil
}

// FetchHistory pulls the full account history (deposits, withdrawals,
// positions, then trades) into a new History. Positions are imported
// before trades so that trades can resolve most contracts from the
// cache instead of one request per contract.
func (c *Client) FetchHistory() (*History, error) {
	history := NewHistory()
	contracts := NewContractCache(c)

	err := forEachPage(c, apiBase+"/funds/deposits", func(p *Deposits) error {
		return history.ImportDeposits(p)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching deposits: %w", err)
	}

	err = forEachPage(c, apiBase+"/funds/withdrawals", func(p *Withdrawals) error {
		history.ImportWithdrawals(p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching withdrawals: %w", err)
	}

	err = forEachPage(c, tradingBase+"/positions", func(p *Positions) error {
		return history.ImportPositions(p, contracts)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	err = forEachPage(c, tradingBase+"/trades", func(p *Trades) error {
		return history.ImportTrades(p, contracts)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching trades: %w", err)
	}

	return history, nil
}
