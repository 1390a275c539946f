package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/images"
	"github.com/destinote/destinote/internal/policy"
	"github.com/goccy/go-json"
)

var errImagesNotConfigured = errors.New("image upload is not configured")

type ImageHandler struct {
	signer *images.Signer
	gate   *policy.AuthGate
}

func NewImageHandler(signer *images.Signer, ag *policy.AuthGate) *ImageHandler {
	return &ImageHandler{signer: signer, gate: ag}
}

// signatureRequest mirrors what the upload widget posts: the params it is
// about to send to the image host. A flat timestamp/folder/public_id body
// is also accepted.
type signatureRequest struct {
	ParamsToSign map[string]any `json:"paramsToSign"`
	Timestamp    json.Number    `json:"timestamp"`
	Folder       string         `json:"folder"`
	PublicID     string         `json:"public_id"`
}

// Signature issues an upload signature to any identified caller.
func (h *ImageHandler) Signature(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResourceImage, nil); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if h.signer == nil || !h.signer.Configured() {
		httpx.Error(w, r, errImagesNotConfigured)
		return
	}

	var req signatureRequest
	if err := httpx.DecodeOptional(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	params := make(map[string]string, len(req.ParamsToSign)+2)
	for k, v := range req.ParamsToSign {
		if v != nil {
			params[k] = paramString(v)
		}
	}
	if req.Timestamp != "" {
		params["timestamp"] = req.Timestamp.String()
	}
	if req.Folder != "" {
		params["folder"] = req.Folder
	}
	if req.PublicID != "" {
		params["public_id"] = req.PublicID
	}

	httpx.JSON(w, http.StatusOK, h.signer.SignUpload(params))
}

// paramString renders a decoded JSON value the way the upload widget
// sends it: numbers without exponent.
func paramString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
