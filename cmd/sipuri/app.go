package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"braces.dev/errtrace"
	"github.com/phsym/console-slog"
	"github.com/urfave/cli/v3"

	"github.com/ghettovoice/sipaddr"
	"github.com/ghettovoice/sipaddr/dns"
	"github.com/ghettovoice/sipaddr/header"
	"github.com/ghettovoice/sipaddr/log"
	"github.com/ghettovoice/sipaddr/uri"
)

var errNotEqual = errors.New("URIs are not equal")

type app struct {
	out    io.Writer
	logger *slog.Logger
	res    *dns.Resolver
	fac    *sipaddr.Factory
}

func newApp(out io.Writer) *cli.Command {
	a := &app{out: out}
	return &cli.Command{
		Name:   "sipuri",
		Usage:  "inspect SIP addresses",
		Writer: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log debug records to stderr",
				Sources: cli.EnvVars("SIPURI_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "nameserver",
				Aliases: []string{"ns"},
				Usage:   "query `ADDR` directly instead of the system resolver",
				Sources: cli.EnvVars("SIPURI_NAMESERVER"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "DNS query timeout",
				Value: 5 * time.Second,
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "parse an address and print its canonical form",
				ArgsUsage: "<address>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "name-addr", Usage: "always use the <addr-spec> form"},
					&cli.BoolFlag{Name: "quote", Usage: "always quote the display name"},
					&cli.BoolFlag{Name: "fields", Usage: "print SIP URI components"},
				},
				Action: a.render,
			},
			{
				Name:      "compare",
				Usage:     "compare two URIs by RFC 3261 rules, exits with 1 when they differ",
				ArgsUsage: "<uri> <uri>",
				Action:    a.compare,
			},
			{
				Name:      "resolve",
				Usage:     "resolve the host of a SIP URI",
				ArgsUsage: "<uri>",
				Action:    a.resolve,
			},
		},
	}
}

func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	a.logger = log.Noop
	if cmd.Bool("debug") {
		a.logger = slog.New(log.NewHandler(console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		})))
	}
	log.SetDefault(a.logger)

	a.res = &dns.Resolver{
		NameServer: cmd.String("nameserver"),
		Timeout:    cmd.Duration("timeout"),
	}
	a.fac = sipaddr.NewFactory(&sipaddr.FactoryOptions{
		Resolver: a.res,
		Logger:   a.logger,
	})
	return ctx, nil
}

func argsExactly(cmd *cli.Command, n int) error {
	if cmd.NArg() != n {
		return errtrace.Wrap(fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, n, cmd.NArg()))
	}
	return nil
}

func (a *app) render(_ context.Context, cmd *cli.Command) error {
	if err := argsExactly(cmd, 1); err != nil {
		return errtrace.Wrap(err)
	}

	na, err := a.fac.ParseNameAddr(cmd.Args().First())
	if err != nil {
		return errtrace.Wrap(err)
	}
	opts := &header.RenderOptions{
		ForceNameAddr:          cmd.Bool("name-addr"),
		ForceQuotedDisplayName: cmd.Bool("quote"),
	}
	a.logger.Debug("address parsed", slog.Any("address", na))
	if _, err := na.RenderTo(a.out, opts); err != nil {
		return errtrace.Wrap(err)
	}
	fmt.Fprintln(a.out)

	if !cmd.Bool("fields") {
		return nil
	}
	u, ok := na.Address().(*uri.SIP)
	if !ok {
		fmt.Fprintf(a.out, "scheme\t%s\ndata\t%s\n", na.Address().Scheme(), na.Address().SchemeData())
		return nil
	}
	a.printSIP(u)
	return nil
}

func (a *app) printSIP(u *uri.SIP) {
	field := func(name, val string) { fmt.Fprintf(a.out, "%s\t%s\n", name, val) }

	field("scheme", u.Scheme())
	if v, ok := u.UserName(); ok {
		field("user", v)
		field("user-type", u.UserType())
	}
	if tn, ok := u.TelephoneNumber(); ok {
		field("phone", tn.String())
	}
	if v, ok := u.Password(); ok {
		field("password", v)
	}
	field("host", u.Host())
	if v, ok := u.Port(); ok {
		field("port", strconv.Itoa(v))
	}
	params, hdrs := u.Params(), u.Headers()
	for name, val := range params.All() {
		field("param:"+name, val)
	}
	for name, val := range hdrs.All() {
		field("header:"+name, val)
	}
	field("hash", strconv.FormatUint(u.Hash(), 16))
}

func (a *app) compare(_ context.Context, cmd *cli.Command) error {
	if err := argsExactly(cmd, 2); err != nil {
		return errtrace.Wrap(err)
	}

	x, err := a.fac.ParseURI(cmd.Args().Get(0))
	if err != nil {
		return errtrace.Wrap(err)
	}
	y, err := a.fac.ParseURI(cmd.Args().Get(1))
	if err != nil {
		return errtrace.Wrap(err)
	}
	if !x.Equal(y) {
		fmt.Fprintln(a.out, "not equal")
		return errNotEqual
	}
	fmt.Fprintln(a.out, "equal")
	return nil
}

func (a *app) resolve(ctx context.Context, cmd *cli.Command) error {
	if err := argsExactly(cmd, 1); err != nil {
		return errtrace.Wrap(err)
	}

	u, err := a.fac.ParseSIP(cmd.Args().First())
	if err != nil {
		return errtrace.Wrap(err)
	}
	host, err := a.fac.CreateHost(u.Host())
	if err != nil {
		return errtrace.Wrap(err)
	}
	ctx, cancel := context.WithTimeout(ctx, a.res.Timeout)
	defer cancel()

	_, hasPort := u.Port()
	if !host.IsIP() && !hasPort {
		a.resolveServices(ctx, u, host.Name())
	}

	ip, err := host.IP(ctx)
	if err != nil {
		return errtrace.Wrap(err)
	}
	fmt.Fprintf(a.out, "%s\t%s\n", host.Kind(), ip)
	return nil
}

// resolveServices prints NAPTR and SRV records of the domain, RFC 3263 section 4.
// Lookup failures are logged and do not stop the address lookup.
func (a *app) resolveServices(ctx context.Context, u *uri.SIP, domain string) {
	naptrs, err := a.res.LookupNAPTR(ctx, domain)
	if err != nil {
		a.logger.Debug("NAPTR lookup failed", slog.String("domain", domain), slog.Any("error", err))
	}
	for _, rec := range naptrs {
		fmt.Fprintf(a.out, "NAPTR\t%d %d %q %q %s\n", rec.Order, rec.Preference, rec.Flags, rec.Service, rec.Replacement)
	}

	proto := "udp"
	if tp, ok := u.Transport(); ok {
		proto = strings.ToLower(tp)
	} else if u.IsSecure() {
		proto = "tcp"
	}
	service := "sip"
	if u.IsSecure() {
		service = "sips"
	}
	srvs, err := a.res.LookupSRV(ctx, service, proto, domain)
	if err != nil {
		a.logger.Debug("SRV lookup failed",
			slog.String("service", service),
			slog.String("proto", proto),
			slog.String("domain", domain),
			slog.Any("error", err),
		)
	}
	for _, srv := range srvs {
		fmt.Fprintf(a.out, "SRV\t%d %d %d %s\n", srv.Priority, srv.Weight, srv.Port, srv.Target)
	}
}
