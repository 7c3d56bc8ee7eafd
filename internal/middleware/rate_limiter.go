package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Fixed-window per-IP rate limiting, kept in process memory. The store runs
// a single API instance, so there is no need to move the counters to Redis.

type janela struct {
	mu    sync.Mutex
	count int
	fimEm time.Time
}

type limitador struct {
	mu      sync.Mutex
	janelas map[string]*janela
	limite  int
	duracao time.Duration
	msg     string
}

func novoLimitador(limite int, duracao time.Duration, msg string) *limitador {
	l := &limitador{
		janelas: make(map[string]*janela),
		limite:  limite,
		duracao: duracao,
		msg:     msg,
	}
	go l.purgar()
	return l
}

func (l *limitador) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		j, ok := l.janelas[ip]
		if !ok {
			j = &janela{}
			l.janelas[ip] = j
		}
		l.mu.Unlock()

		j.mu.Lock()
		now := time.Now()
		if now.After(j.fimEm) {
			j.count = 0
			j.fimEm = now.Add(l.duracao)
		}
		j.count++
		excedeu := j.count > l.limite
		retry := j.fimEm
		j.mu.Unlock()

		if excedeu {
			c.Header("Retry-After", retry.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// purgar drops expired windows so IPs that never come back do not pile up.
func (l *limitador) purgar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		removidas := 0

		l.mu.Lock()
		for ip, j := range l.janelas {
			j.mu.Lock()
			if now.After(j.fimEm) {
				delete(l.janelas, ip)
				removidas++
			}
			j.mu.Unlock()
		}
		restantes := len(l.janelas)
		l.mu.Unlock()

		if removidas > 0 {
			log.Debug().
				Int("removidas", removidas).
				Int("restantes", restantes).
				Msg("rate limiter: janelas expiradas removidas")
		}
	}
}

var loginLimiter = novoLimitador(20, time.Minute,
	"Muitas tentativas de login. Tente novamente em 1 minuto.")

// LoginRateLimiter caps login attempts at 20 per minute per IP, a harsh
// limit on purpose: nothing legitimate retries a password that fast.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.handler()
}

// RateLimiter is the general per-IP limiter applied to the whole API.
func RateLimiter(limite int, duracao time.Duration) gin.HandlerFunc {
	return novoLimitador(limite, duracao,
		"Muitas requisições. Tente novamente em instantes.").handler()
}
