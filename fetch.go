// Notification feed client
package main

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

const (
	siteURL = "https://rumble.com/"
	feedURL = "https://rumble.com/service.php?name=user.notification_feed&limit=25"
)

// errBlocked means the feed answered 403 and browser mode should take over
var errBlocked = errors.New("session blocked (403)")

// Feed endpoint, replaced in tests
var feedEndpoint = feedURL

type httpVars struct {
	url       string
	method    string
	cookies   []*fasthttp.Cookie
	userAgent string
	accept    string
	referer   string
}

var httpClient = &fasthttp.Client{
	ReadTimeout:  10 * time.Second,
	WriteTimeout: 10 * time.Second,
}

var feedParserPool fastjson.ParserPool

// repost is one detected repost notification
type repost struct {
	ID    string
	User  string
	Video string
}

func (r repost) alert() alert {
	return alert{User: r.User, Video: r.Video}
}

// md5Hex is the history key of a notification
func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// httpRequest sends the request, the caller must fasthttp.ReleaseResponse(resp)
func (hv *httpVars) httpRequest() (*fasthttp.Response, error) {
	if hv.url == "" {
		return nil, errors.New("request url is empty")
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(hv.url)
	if hv.method != "" {
		req.Header.SetMethod(hv.method)
	} else {
		req.Header.SetMethod(fasthttp.MethodGet)
	}
	for _, cookie := range hv.cookies {
		req.Header.SetCookieBytesKV(cookie.Key(), cookie.Value())
	}
	if hv.userAgent != "" {
		req.Header.SetUserAgent(hv.userAgent)
	}
	if hv.accept != "" {
		req.Header.Set(fasthttp.HeaderAccept, hv.accept)
	}
	if hv.referer != "" {
		req.Header.SetReferer(hv.referer)
	}

	if err := httpClient.Do(req, resp); err != nil {
		fasthttp.ReleaseResponse(resp)
		return nil, fmt.Errorf("request %s: %w", hv.url, err)
	}
	return resp, nil
}

// fetchFeed requests the notification feed with the saved session
func fetchFeed(s *session) ([]repost, error) {
	hv := &httpVars{
		url:       feedEndpoint,
		method:    fasthttp.MethodGet,
		cookies:   s.fasthttpCookies(),
		userAgent: s.userAgent(),
		accept:    "application/json, text/plain, */*",
		referer:   siteURL,
	}
	resp, err := hv.httpRequest()
	if err != nil {
		return nil, err
	}
	defer fasthttp.ReleaseResponse(resp)

	switch code := resp.StatusCode(); code {
	case fasthttp.StatusOK:
		return parseFeed(resp.Body())
	case fasthttp.StatusForbidden:
		return nil, errBlocked
	default:
		return nil, fmt.Errorf("API Error: %d", code)
	}
}

// firstString returns the first non-empty string among the keys of v
func firstString(v *fastjson.Value, def string, keys ...string) string {
	if v == nil {
		return def
	}
	for _, k := range keys {
		if b := v.GetStringBytes(k); len(b) > 0 {
			return string(b)
		}
	}
	return def
}

// scalarText renders a JSON scalar the way it is printed, strings unquoted
func scalarText(v *fastjson.Value) string {
	if v == nil || v.Type() == fastjson.TypeNull {
		return ""
	}
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}

// parseFeed picks the reposts out of a feed response, newest first
func parseFeed(body []byte) ([]repost, error) {
	p := feedParserPool.Get()
	defer feedParserPool.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var reposts []repost
	for _, item := range v.GetArray("data", "items") {
		user := "Unknown"
		video := "Video"
		switch {
		case string(item.GetStringBytes("type")) == "video_reposted":
			user = firstString(item.Get("user"), "Unknown", "username", "name")
			video = firstString(item.Get("video"), "Unknown Video", "title")
		case strings.Contains(strings.ToLower(string(item.GetStringBytes("body"))), "reposted"):
			user = firstString(item.Get("user"), "Unknown", "username")
		default:
			continue
		}
		key := user + "_" + video + "_" + scalarText(item.Get("created_on"))
		reposts = append(reposts, repost{ID: md5Hex(key), User: user, Video: video})
	}
	return reposts, nil
}

// newFeedBreaker stops hammering the feed after repeated failures
func newFeedBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "notification feed",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lPrintWarnf("%s: circuit %s -> %s", name, from, to)
			recordBreakerState(to)
		},
	})
}

// fetchReposts is fetchFeed behind cb
func fetchReposts(cb *gobreaker.CircuitBreaker, s *session) ([]repost, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fetchFeed(s)
	})
	if err != nil {
		return nil, err
	}
	reposts, _ := res.([]repost)
	return reposts, nil
}
