// Package refcode generates and extracts the order reference code that
// customers type into the bank transfer description, e.g. IA250615X7K2QA.
package refcode

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"
)

const (
	Prefix       = "IA"
	SuffixLength = 6

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// 先頭の IA + YYMMDD + 英数字6文字。銀行が前後に文字を足しても拾えるように境界は見ない
var pattern = regexp.MustCompile(`(?i)IA\d{6}[A-Z0-9]{6}`)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Generator struct {
	clock Clock
	loc   *time.Location
}

// locは日付部分のタイムゾーン。nilならUTC
func NewGenerator(clock Clock, loc *time.Location) *Generator {
	if clock == nil {
		clock = systemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{clock: clock, loc: loc}
}

func (g *Generator) New() (string, error) {
	suffix, err := randomSuffix(SuffixLength)
	if err != nil {
		return "", err
	}
	return Prefix + g.clock.Now().In(g.loc).Format("060102") + suffix, nil
}

func randomSuffix(n int) (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// 複数含まれていたら最初の一致を使う
func Extract(text string) (string, bool) {
	m := pattern.FindString(text)
	if m == "" {
		return "", false
	}
	return Normalize(m), true
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Valid(code string) bool {
	c := Normalize(code)
	return len(c) == len(Prefix)+6+SuffixLength && pattern.MatchString(c)
}
