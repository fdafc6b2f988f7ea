// Package logoclient is the entry point for constructing a Logo Objects REST
// client that implements the logo.Client interface.
//
// It normalizes the base URL and wires transport, authentication, caching and
// interceptors on top of the resource interfaces defined in the logo package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/logo-objects-client/pkg/logo"
//	  "github.com/fivetwenty-io/logo-objects-client/pkg/logoclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := logoclient.NewWithPassword(ctx, "erp.example.com", "LOGO", "secret", 1)
//	  if err != nil { log.Fatal(err) }
//
//	  criteria := logo.NewCriteria().
//	    Set("code", logo.Like(logo.String("AB*"))).
//	    Set("cardType", logo.AnyOf{logo.Int(1), logo.Int(2)})
//
//	  items, err := cli.Items().Search(ctx, criteria, logo.NewQueryOptions().WithLimit(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// The token endpoint defaults to <base URL>/api/v1/token. Set logo.Config.TokenURL
// when the service issues tokens elsewhere.
package logoclient
