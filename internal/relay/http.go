package relay

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"veilchat/internal/domain"
	"veilchat/internal/protocol/rotation"
)

// HTTP talks JSON over HTTP to a conversation relay.
type HTTP struct {
	Base string
	HTTP *http.Client
}

func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: client}
}

func (c *HTTP) CreateConversation(ctx context.Context, req domain.CreateRequest) error {
	return c.post(ctx, "/conversations", req, nil)
}

func (c *HTTP) FetchConversation(
	ctx context.Context,
	conv domain.ConversationID,
) (domain.Conversation, error) {
	var out domain.Conversation
	err := c.getJSON(ctx, "/conversations/"+url.PathEscape(string(conv)), &out)
	return out, err
}

func (c *HTTP) FetchKeyChain(
	ctx context.Context,
	conv domain.ConversationID,
	holder domain.X25519Public,
) (domain.KeyChain, error) {
	var out domain.KeyChain
	path := "/conversations/" + url.PathEscape(string(conv)) +
		"/keychain?holder=" + hex.EncodeToString(holder.Slice())
	err := c.getJSON(ctx, path, &out)
	return out, err
}

func (c *HTTP) FetchRoster(
	ctx context.Context,
	conv domain.ConversationID,
) ([]domain.HolderKey, error) {
	var out []domain.HolderKey
	err := c.getJSON(ctx, "/conversations/"+url.PathEscape(string(conv))+"/roster", &out)
	return out, err
}

// SubmitRotation posts a prepared rotation. The relay rejects it with 409
// Conflict when the expected epoch no longer matches, surfaced here as
// rotation.ErrStaleEpoch so callers can re-sync and retry.
func (c *HTTP) SubmitRotation(
	ctx context.Context,
	conv domain.ConversationID,
	req domain.RotationRequest,
) (domain.Epoch, error) {
	var out struct {
		Epoch domain.Epoch `json:"epoch"`
	}
	path := "/conversations/" + url.PathEscape(string(conv)) + "/rotate"
	if err := c.post(ctx, path, req, &out); err != nil {
		var he *httpError
		if errors.As(err, &he) && he.status == http.StatusConflict {
			return 0, rotation.ErrStaleEpoch
		}
		return 0, err
	}
	return out.Epoch, nil
}

func (c *HTTP) SubmitMemberWrap(
	ctx context.Context,
	conv domain.ConversationID,
	wrap domain.DirectWrap,
) error {
	return c.post(ctx, "/conversations/"+url.PathEscape(string(conv))+"/wraps", wrap, nil)
}

func (c *HTTP) UpdatePrivilege(
	ctx context.Context,
	conv domain.ConversationID,
	holder domain.X25519Public,
	privilege domain.Privilege,
) error {
	body := struct {
		Holder    string           `json:"holder"`
		Privilege domain.Privilege `json:"privilege"`
	}{Holder: hex.EncodeToString(holder.Slice()), Privilege: privilege}
	return c.post(ctx, "/conversations/"+url.PathEscape(string(conv))+"/privilege", body, nil)
}

func (c *HTTP) DeleteConversation(ctx context.Context, conv domain.ConversationID) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.Base+"/conversations/"+url.PathEscape(string(conv)), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return &httpError{method: http.MethodDelete, path: req.URL.Path, status: resp.StatusCode, text: resp.Status}
	}
	return nil
}

func (c *HTTP) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return &httpError{method: http.MethodPost, path: path, status: resp.StatusCode, text: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return &httpError{method: http.MethodGet, path: path, status: resp.StatusCode, text: resp.Status}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// httpError carries the status code so callers can map specific relay
// rejections onto sentinel errors.
type httpError struct {
	method string
	path   string
	status int
	text   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("relay %s %s: %s", e.method, e.path, e.text)
}

var _ domain.RelayClient = (*HTTP)(nil)
