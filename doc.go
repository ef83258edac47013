/*
Package sipaddr is the entry point to the SIP address model.

The address types live in sub-packages:

  - [github.com/ghettovoice/sipaddr/uri] holds generic and SIP URIs, hosts, user info and
    telephone numbers together with the copy-on-write [uri.Shared] handle.
  - [github.com/ghettovoice/sipaddr/header] holds the name-addr value used by From, To and Contact headers.
  - [github.com/ghettovoice/sipaddr/parser] turns text into those values.

A [Factory] ties them together. It creates and parses addresses, resolves hosts through
a configured resolver and interns frequently used SIP URIs in a bounded cache,
handing out [uri.Shared] handles over them.

	f := sipaddr.NewFactory(&sipaddr.FactoryOptions{CacheSize: 100})
	u, err := f.CreateSIPUser("alice", "example.com")
	if err != nil {
		return err
	}
	na, err := f.CreateNameAddrDisplay(u, "Alice")

# Errors

All errors match one of [ErrInvalidArgument], [ErrMalformedValue] or [ErrWrongState]
with [errors.Is]. Addresses from other implementations are rejected with [ErrCrossImplementation].

# Thread Safety

A [Factory] is safe for concurrent use. Values it returns are not, except [uri.Shared]
handles over the same cached URI, which can be read and modified from different goroutines
as long as each handle has a single owner.
*/
package sipaddr

//go:generate go tool errtrace -w .
