// Package greeting exposes the greeting payload as an HTTP Cloud Function.
package greeting

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

// RFC3339Millis matches the main service's timestamp format.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

const defaultMessage = "Hello OpenShift"

var message = messageFromEnv()

func init() {
	functions.HTTP("Greeting", greetingHandler)
}

// Response represents the function response.
type Response struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func messageFromEnv() string {
	if v, ok := os.LookupEnv("HELLO_MESSAGE"); ok {
		return v
	}
	return defaultMessage
}

func greetingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	resp := Response{
		Message:   message,
		Timestamp: time.Now().UTC().Format(RFC3339Millis),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
