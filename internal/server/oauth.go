package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// CodeExchanger consumes a single-use authorization code, minting and
// persisting a credential record.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) error
}

// CallbackResult reports the outcome of one authorization attempt.
type CallbackResult struct {
	err error
}

func (r CallbackResult) Error() error {
	return r.err
}

// CallbackHandler handles the provider's OAuth redirect.
//
// It serves exactly one request: the authorization code (if any) is handed
// to the exchanger, a minimal HTML page is returned to the browser, and a
// single result is published. Requests without a code are still terminal;
// each authorization attempt gets one interaction.
type CallbackHandler struct {
	exchanger  CodeExchanger
	resultChan chan CallbackResult
	once       sync.Once
	handled    bool
	mu         sync.Mutex
}

// NewCallbackHandler creates a handler feeding codes into the given exchanger.
func NewCallbackHandler(exchanger CodeExchanger) *CallbackHandler {
	return &CallbackHandler{
		exchanger:  exchanger,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		writePage(w, http.StatusBadRequest, "Authorization Failed", "No authorization code received. You can close this window and try again.")
		h.Send(CallbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		return
	}

	if err := h.exchanger.ExchangeCode(r.Context(), code); err != nil {
		writePage(w, http.StatusBadRequest, "Authorization Failed", "Failed to exchange the authorization code. You can close this window and try again.")
		h.Send(CallbackResult{err: err})
		return
	}

	writePage(w, http.StatusOK, "Authorization Successful", "You can close this window and return to the launcher.")
	h.Send(CallbackResult{})
}

// Send publishes the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for awaiting flow completion.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, title, title, message)
}
