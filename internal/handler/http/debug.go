package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/ipmatch"
)

type debugIPResponse struct {
	ResolvedIP string            `json:"resolved_ip"`
	RemoteAddr string            `json:"remote_addr"`
	Headers    map[string]string `json:"headers"`
}

var debugIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"Fastly-Client-IP",
	"True-Client-IP",
}

// DebugIP shows how the client address was resolved. Only mounted outside
// production.
func DebugIP(w http.ResponseWriter, r *http.Request) {
	headers := make(map[string]string)
	for _, h := range debugIPHeaders {
		if v := r.Header.Get(h); v != "" {
			headers[h] = v
		}
	}

	response.Success(w, debugIPResponse{
		ResolvedIP: ipmatch.ExtractClientIP(r),
		RemoteAddr: r.RemoteAddr,
		Headers:    headers,
	})
}
