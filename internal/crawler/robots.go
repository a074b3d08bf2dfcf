package crawler

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// RobotsChecker fetches and caches robots.txt rules per host. The crawl
// targets a single origin, so the cache normally holds one entry; the
// map keeps resumed crawls over www/apex host pairs correct.
type RobotsChecker struct {
	httpClient *HTTPClient
	userAgent  string
	rules      map[string]*robotRules
	mu         sync.Mutex
}

type robotRules struct {
	disallowed []string
	allowed    []string
}

// NewRobotsChecker creates a robots.txt checker using the given client
func NewRobotsChecker(httpClient *HTTPClient, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		httpClient: httpClient,
		userAgent:  userAgent,
		rules:      make(map[string]*robotRules),
	}
}

// IsAllowed reports whether urlStr may be fetched. A robots.txt that
// cannot be fetched or parsed allows everything.
func (r *RobotsChecker) IsAllowed(ctx context.Context, urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	rules := r.getRules(ctx, parsed.Scheme, parsed.Host)
	if rules == nil {
		return true
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range rules.disallowed {
		if !matchesRobotsPattern(path, pattern) {
			continue
		}
		// A longer allow rule overrides the disallow
		for _, allow := range rules.allowed {
			if matchesRobotsPattern(path, allow) && len(allow) > len(pattern) {
				return true
			}
		}
		return false
	}

	return true
}

func (r *RobotsChecker) getRules(ctx context.Context, scheme, host string) *robotRules {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rules, ok := r.rules[host]; ok {
		return rules
	}

	var rules *robotRules
	resp, err := r.httpClient.Get(ctx, fmt.Sprintf("%s://%s/robots.txt", scheme, host))
	if err == nil && resp.StatusCode == 200 {
		rules = parseRobotsTxt(string(resp.Body), r.userAgent)
	}

	// Cache the absent/unreachable case too, so every page does not
	// retrigger a robots.txt fetch.
	r.rules[host] = rules
	return rules
}

// parseRobotsTxt extracts the allow/disallow rules that apply to the
// wildcard group or to this crawler's user agent.
func parseRobotsTxt(content, userAgent string) *robotRules {
	rules := &robotRules{}
	agentLower := strings.ToLower(userAgent)

	scanner := bufio.NewScanner(strings.NewReader(content))
	inGroup := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		directive := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch directive {
		case "user-agent":
			agent := strings.ToLower(value)
			inGroup = agent == "*" || strings.Contains(agentLower, agent)
		case "disallow":
			if inGroup && value != "" {
				rules.disallowed = append(rules.disallowed, value)
			}
		case "allow":
			if inGroup && value != "" {
				rules.allowed = append(rules.allowed, value)
			}
		}
	}

	return rules
}

// matchesRobotsPattern checks a path against a robots.txt pattern,
// supporting the * wildcard and the $ end anchor.
func matchesRobotsPattern(path, pattern string) bool {
	exact := strings.HasSuffix(pattern, "$")
	if exact {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	parts := strings.Split(pattern, "*")

	// Leading part anchors at the start of the path
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	remaining := path[len(parts[0]):]

	for _, part := range parts[1:] {
		if part == "" {
			remaining = ""
			continue
		}
		idx := strings.Index(remaining, part)
		if idx == -1 {
			return false
		}
		remaining = remaining[idx+len(part):]
	}

	if exact {
		return remaining == ""
	}
	return true
}
