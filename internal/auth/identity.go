package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// MinLocalPartLength は'@'より前に必要な最小文字数。
const MinLocalPartLength = 6

// IdentityPolicy はログインIDの形式と許可ドメインを検証する。
type IdentityPolicy struct {
	domains []string
	allowed map[string]struct{}
}

// NewIdentityPolicy は許可ドメイン一覧からIdentityPolicyを生成する。
// ドメインはIDNA正規化した小文字ASCIIで比較する。
func NewIdentityPolicy(domains []string) (*IdentityPolicy, error) {
	p := &IdentityPolicy{allowed: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		ascii, err := normalizeDomain(d)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed domain %q: %w", d, err)
		}
		if _, dup := p.allowed[ascii]; dup {
			continue
		}
		p.allowed[ascii] = struct{}{}
		p.domains = append(p.domains, ascii)
	}
	if len(p.domains) == 0 {
		return nil, fmt.Errorf("at least one allowed domain is required")
	}
	return p, nil
}

// AllowedDomains は許可ドメインを設定順に返す。
func (p *IdentityPolicy) AllowedDomains() []string {
	return append([]string(nil), p.domains...)
}

// Normalize はログインIDを検証し、ドメイン部を正規化した値を返す。
// '@'がちょうど1つ、その前に6文字以上、ドメインが許可リストに含まれる場合のみ受け付ける。
func (p *IdentityPolicy) Normalize(identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if strings.Count(identity, "@") != 1 {
		return "", ErrInvalidIdentity
	}

	local, domain, _ := strings.Cut(identity, "@")
	if utf8.RuneCountInString(local) < MinLocalPartLength {
		return "", ErrInvalidIdentity
	}

	ascii, err := normalizeDomain(domain)
	if err != nil {
		return "", ErrInvalidIdentity
	}
	if _, ok := p.allowed[ascii]; !ok {
		return "", ErrInvalidIdentity
	}

	return local + "@" + ascii, nil
}

func normalizeDomain(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", fmt.Errorf("empty domain")
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", err
	}
	return strings.ToLower(ascii), nil
}
