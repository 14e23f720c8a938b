package consul

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/airenas/dubber/internal/pkg/synthesizer"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/hashicorp/consul/api"
	"go.uber.org/multierr"
)

const (
	isHTTPSSLKey = "HTTPSSL"
	priorityKey  = "priority"
	modelKey     = "model"
)

// Provider selects a text to speech backend registered in consul
type Provider struct {
	consul  *api.Client
	srvName string
	apiKey  string

	lock   *sync.RWMutex
	synths []*synthWrap
}

type synthWrap struct {
	real     *synthesizer.Client
	srv      string
	key      string
	priority float64
}

// NewProvider creates consul based synthesizer provider
func NewProvider(cfg *api.Config, srvNameInConsul, apiKey string) (*Provider, error) {
	c, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if srvNameInConsul == "" {
		return nil, fmt.Errorf("no srv name")
	}
	return newProvider(c, srvNameInConsul, apiKey), nil
}

func newProvider(c *api.Client, srvNameInConsul, apiKey string) *Provider {
	goapp.Log.Info().Str("service", srvNameInConsul).Msg("cfg: srv name in consul")
	return &Provider{consul: c, srvName: srvNameInConsul, apiKey: apiKey,
		lock: &sync.RWMutex{}, synths: make([]*synthWrap, 0)}
}

// StartCheckLoop starts monitoring consul for synthesizer backends
// returns channel closed after the loop exits
func (c *Provider) StartCheckLoop(ctx context.Context, checkInterval time.Duration) (chan struct{}, error) {
	if checkInterval <= 0 {
		return nil, fmt.Errorf("wrong check interval %v", checkInterval)
	}
	res := make(chan struct{}, 1)
	go func() {
		defer close(res)
		c.serviceLoop(ctx, checkInterval)
	}()
	return res, nil
}

// Synthesize implements the pipeline synthesizer by delegating to a selected backend
func (c *Provider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	s, srv, err := c.get()
	if err != nil {
		return nil, err
	}
	goapp.Log.Debug().Str("service", srv).Msg("selected synthesizer")
	return s.Synthesize(ctx, text, voiceID)
}

func (c *Provider) get() (*synthesizer.Client, string, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if len(c.synths) == 0 {
		return nil, "", fmt.Errorf("no active synthesizer in consul for `%s`", c.srvName)
	}
	if len(c.synths) == 1 {
		s := c.synths[0]
		return s.real, s.srv, nil
	}
	i, err := getRandomByPriority(c.synths)
	if err != nil {
		return nil, "", fmt.Errorf("can't select synthesizer: %v", err)
	}
	s := c.synths[i]
	return s.real, s.srv, nil
}

func getRandomByPriority(synths []*synthWrap) (int, error) {
	prMax := 0.0
	for _, s := range synths {
		prMax += s.priority
	}
	if prMax < 0.1 {
		return 0, fmt.Errorf("wrong priority sum found %f", prMax)
	}
	rnd := rand.Float64() * prMax
	prMax = 0.0
	for i, s := range synths {
		prMax += s.priority
		if rnd < prMax {
			return i, nil
		}
	}
	return len(synths) - 1, nil
}

func (c *Provider) serviceLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	// run on startup
	if err := c.check(ctx); err != nil {
		goapp.Log.Error().Err(err).Send()
	}
	for {
		select {
		case <-ticker.C:
			if err := c.check(ctx); err != nil {
				goapp.Log.Error().Err(err).Send()
			}
		case <-ctx.Done():
			ticker.Stop()
			goapp.Log.Info().Msgf("Stopped consul timer service")
			return
		}
	}
}

func (c *Provider) check(ctx context.Context) error {
	ctxInt, cf := context.WithTimeout(ctx, time.Second*5)
	defer cf()
	srvs, _, err := c.consul.Health().Service(c.srvName, "", true, (&api.QueryOptions{}).WithContext(ctxInt))
	if err != nil {
		return fmt.Errorf("can't invoke consul: %v", err)
	}
	return c.updateSrv(srvs)
}

func (c *Provider) updateSrv(srvs []*api.ServiceEntry) error {
	goapp.Log.Info().Msgf("got %d services from consul", len(srvs))
	c.lock.Lock()
	defer c.lock.Unlock()
	ms := map[string]*api.ServiceEntry{}
	for _, s := range srvs {
		ms[key(s)] = s
	}
	keep := []*synthWrap{}
	for _, s := range c.synths {
		if v, ok := ms[s.srv]; ok && s.key == fullKey(v) {
			keep = append(keep, s)
			delete(ms, s.srv)
			continue
		}
		goapp.Log.Warn().Str("service", s.srv).Msgf("dropped synthesizer")
	}
	if len(keep) == len(c.synths) && len(ms) == 0 {
		return nil
	}
	c.synths = keep
	var err error
	for v, s := range ms {
		sw, errInt := c.newSynthesizer(v, s)
		if errInt != nil {
			err = multierr.Append(err, errInt)
			continue
		}
		c.synths = append(c.synths, sw)
		goapp.Log.Info().Str("service", v).Float64("priority", sw.priority).Msg("added synthesizer")
	}
	return err
}

func (c *Provider) newSynthesizer(v string, s *api.ServiceEntry) (*synthWrap, error) {
	sc, err := synthesizer.NewClient(getURL(s), c.apiKey, s.Service.Meta[modelKey])
	if err != nil {
		return nil, fmt.Errorf("can't init synthesizer for %s: %v", v, err)
	}
	priority, err := getPriority(s)
	if err != nil {
		return nil, fmt.Errorf("can't init synthesizer for %s: %v", v, err)
	}
	res := &synthWrap{real: sc, srv: v, key: fullKey(s), priority: priority}
	return res, nil
}

func getPriority(s *api.ServiceEntry) (float64, error) {
	v, ok := s.Service.Meta[priorityKey]
	if !ok {
		return 1, nil
	}
	res, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("can't parse priority '%s': %v", v, err)
	}
	if res < 0.5 || res > 50 {
		return 0, fmt.Errorf("wrong priority value '%f', not in [0.5, 50]", res)
	}
	return res, nil
}

func getURL(s *api.ServiceEntry) string {
	ssl := ""
	if isSSL, ok := s.Service.Meta[isHTTPSSLKey]; ok {
		if boolValue, err := strconv.ParseBool(isSSL); err == nil && boolValue {
			ssl = "s"
		}
	}
	return fmt.Sprintf("http%s://%s:%d", ssl, s.Service.Address, s.Service.Port)
}

func key(s *api.ServiceEntry) string {
	return fmt.Sprintf("%s:%d", s.Service.Address, s.Service.Port)
}

func fullKey(s *api.ServiceEntry) string {
	res := key(s)
	for _, k := range [...]string{modelKey, isHTTPSSLKey, priorityKey} {
		if v, ok := s.Service.Meta[k]; ok {
			res += "," + k + ":" + v
		}
	}
	return res
}
