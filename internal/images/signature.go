// Package images signs client-side uploads to the image host.
//
// The host authenticates an upload by recomputing
// sha1(sorted "key=value" pairs joined by "&" + api secret).
package images

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// unsignedParams are sent with the upload but never part of the signature.
var unsignedParams = map[string]bool{
	"file":          true,
	"cloud_name":    true,
	"resource_type": true,
	"api_key":       true,
}

// StringToSign builds the canonical "k=v&k=v" string. Keys are sorted, so
// the result does not depend on map iteration or construction order.
func StringToSign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || unsignedParams[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	return strings.Join(pairs, "&")
}

// Sign returns the hex SHA-1 digest of StringToSign(params) + secret.
func Sign(params map[string]string, secret string) string {
	sum := sha1.Sum([]byte(StringToSign(params) + secret))
	return hex.EncodeToString(sum[:])
}

// Signer issues upload signatures for one image host account.
type Signer struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// Now is overridable in tests.
	Now func() time.Time
}

// UploadSignature is returned to the browser, which posts it to the host
// together with the signed params.
type UploadSignature struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder,omitempty"`
}

// Configured reports whether credentials are present.
func (s *Signer) Configured() bool {
	return s.CloudName != "" && s.APIKey != "" && s.APISecret != ""
}

// SignUpload signs params. A missing or malformed timestamp is replaced by
// the current time and a missing folder by the default one.
func (s *Signer) SignUpload(params map[string]string) UploadSignature {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	signed := make(map[string]string, len(params)+2)
	for k, v := range params {
		signed[k] = v
	}
	if signed["folder"] == "" && s.Folder != "" {
		signed["folder"] = s.Folder
	}
	ts, err := strconv.ParseInt(signed["timestamp"], 10, 64)
	if err != nil || ts <= 0 {
		ts = now().Unix()
	}
	signed["timestamp"] = strconv.FormatInt(ts, 10)

	return UploadSignature{
		Timestamp: ts,
		Signature: Sign(signed, s.APISecret),
		APIKey:    s.APIKey,
		CloudName: s.CloudName,
		Folder:    signed["folder"],
	}
}
