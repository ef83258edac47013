package sipaddr

import (
	"log/slog"
	"net"
	"sync"

	"braces.dev/errtrace"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ghettovoice/sipaddr/dns"
	"github.com/ghettovoice/sipaddr/header"
	"github.com/ghettovoice/sipaddr/log"
	"github.com/ghettovoice/sipaddr/parser"
	"github.com/ghettovoice/sipaddr/uri"
)

// DefaultCacheSize is the number of interned SIP URIs kept by a [Factory] by default.
const DefaultCacheSize = 1000

// FactoryOptions configures a [Factory].
type FactoryOptions struct {
	// CacheSize is the capacity of the interning cache.
	// If zero or negative, [DefaultCacheSize] is used.
	CacheSize int
	// Resolver is bound to hosts created by the factory.
	// If nil, the [dns.DefaultResolver] is used.
	Resolver uri.Resolver
	// Logger is used for debug records about the cache and rejected input.
	// If nil, the [log.Default] is used.
	Logger *slog.Logger
	// ParserOptions are passed to parsers of the factory.
	// If the logger is not set there, the factory logger is used.
	ParserOptions *parser.Options
}

func (o *FactoryOptions) cacheSize() int {
	if o == nil || o.CacheSize <= 0 {
		return DefaultCacheSize
	}
	return o.CacheSize
}

func (o *FactoryOptions) resolver() uri.Resolver {
	if o == nil || o.Resolver == nil {
		return dns.DefaultResolver()
	}
	return o.Resolver
}

func (o *FactoryOptions) log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *FactoryOptions) parserOpts() parser.Options {
	var opts parser.Options
	if o != nil && o.ParserOptions != nil {
		opts = *o.ParserOptions
	}
	if opts.Logger == nil && o != nil {
		opts.Logger = o.Logger
	}
	return opts
}

// Factory creates, parses and interns addresses.
// It is safe for concurrent use.
type Factory struct {
	opts    FactoryOptions
	log     *slog.Logger
	res     uri.Resolver
	cache   *lru.Cache[string, *uri.SIP]
	parsers sync.Pool
}

// NewFactory creates a factory. Options are optional, default options are used if nil (see [FactoryOptions]).
func NewFactory(opts *FactoryOptions) *Factory {
	f := &Factory{
		log: opts.log(),
		res: opts.resolver(),
	}
	if opts != nil {
		f.opts = *opts
	}

	popts := opts.parserOpts()
	f.parsers.New = func() any { return parser.New(&popts) }

	// lru.NewWithEvict fails only on non-positive size
	f.cache, _ = lru.NewWithEvict(opts.cacheSize(), func(key string, _ *uri.SIP) {
		f.log.Debug("SIP URI evicted from cache", slog.String("uri", key))
	})
	return f
}

// CreateSIP creates a SIP URI with the given host.
func (f *Factory) CreateSIP(host string) (*uri.SIP, error) {
	return errtrace.Wrap2(uri.NewSIP(host))
}

// CreateSIPUser creates a SIP URI with the given user and host.
func (f *Factory) CreateSIPUser(user, host string) (*uri.SIP, error) {
	return errtrace.Wrap2(uri.NewSIPUser(user, host))
}

// CreateSIPFromIP creates a SIP URI with the host set from ip.
func (f *Factory) CreateSIPFromIP(ip net.IP) (*uri.SIP, error) {
	u := new(uri.SIP)
	if err := u.SetHostIP(ip); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u, nil
}

// CreateURI creates a URI from a scheme and escaped scheme data.
func (f *Factory) CreateURI(scheme, data string) (uri.URI, error) {
	p := f.getParser()
	defer f.putParser(p)
	return errtrace.Wrap2(p.ParseURI(scheme, data))
}

// CreateNameAddr creates an address without display name.
func (f *Factory) CreateNameAddr(addr uri.URI) (*header.NameAddr, error) {
	return errtrace.Wrap2(header.NewNameAddr(addr))
}

// CreateNameAddrDisplay creates an address with display name.
func (f *Factory) CreateNameAddrDisplay(addr uri.URI, display string) (*header.NameAddr, error) {
	return errtrace.Wrap2(header.NewNameAddrDisplay(addr, display))
}

// CreateHost creates a host bound to the factory resolver.
func (f *Factory) CreateHost(name string) (*uri.Host, error) {
	return errtrace.Wrap2(uri.NewHost(name, f.res))
}

// ParseURI parses an absolute URI, see [parser.Parser.Parse].
func (f *Factory) ParseURI(text string) (uri.URI, error) {
	p := f.getParser()
	defer f.putParser(p)
	return errtrace.Wrap2(p.Parse(text))
}

// ParseSIP parses a SIP or SIPS URI, see [parser.Parser.ParseSIP].
func (f *Factory) ParseSIP(text string) (*uri.SIP, error) {
	p := f.getParser()
	defer f.putParser(p)
	return errtrace.Wrap2(p.ParseSIP(text))
}

// ParseNameAddr parses an address, see [parser.Parser.ParseNameAddr].
func (f *Factory) ParseNameAddr(text string) (*header.NameAddr, error) {
	p := f.getParser()
	defer f.putParser(p)
	return errtrace.Wrap2(p.ParseNameAddr(text))
}

// Parser returns a new parser configured like the factory ones.
// The caller owns it and must not share it between goroutines.
func (f *Factory) Parser() *parser.Parser {
	popts := f.opts.parserOpts()
	return parser.New(&popts)
}

func (f *Factory) getParser() *parser.Parser {
	return f.parsers.Get().(*parser.Parser) //nolint:forcetypeassert
}

func (f *Factory) putParser(p *parser.Parser) { f.parsers.Put(p) }

// SharedSIP returns a handle over the interned SIP URI with the given user and host.
// Empty user creates a URI without user part.
func (f *Factory) SharedSIP(user, host string) (*uri.Shared, error) {
	var (
		u   *uri.SIP
		err error
	)
	if user == "" {
		u, err = uri.NewSIP(host)
	} else {
		u, err = uri.NewSIPUser(user, host)
	}
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return f.intern(u, false), nil
}

// Intern returns a handle over the cached SIP URI equal in rendering to u.
// The cache keeps its own copy, so u stays owned by the caller.
// Handles returned for the same rendering share the cached value until one of them is modified.
func (f *Factory) Intern(u *uri.SIP) *uri.Shared {
	if u == nil {
		return uri.NewShared(nil)
	}
	return f.intern(u, true)
}

func (f *Factory) intern(u *uri.SIP, copyVal bool) *uri.Shared {
	key := u.String()
	if v, ok := f.cache.Get(key); ok {
		f.log.Debug("SIP URI cache hit", slog.String("uri", key))
		return uri.NewShared(v)
	}

	if copyVal {
		u, _ = u.Clone().(*uri.SIP)
	}
	if prev, ok, _ := f.cache.PeekOrAdd(key, u); ok {
		f.log.Debug("SIP URI cache hit", slog.String("uri", key))
		return uri.NewShared(prev)
	}
	f.log.Debug("SIP URI cached", slog.String("uri", key), slog.Int("cache_len", f.cache.Len()))
	return uri.NewShared(u)
}

// CacheLen returns the number of interned SIP URIs.
func (f *Factory) CacheLen() int { return f.cache.Len() }

// PurgeCache drops all interned SIP URIs.
// Handles given out before keep their values.
func (f *Factory) PurgeCache() { f.cache.Purge() }
