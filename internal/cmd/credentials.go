package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/operand/credvault/internal/audit"
	"github.com/operand/credvault/internal/vault"
	"github.com/operand/credvault/internal/vault/store"
)

// StoreCommand encrypts and stores a new credential.  The secret is read
// from stdin so it never appears in the process argument list.
type StoreCommand struct {
	baseCommand
}

func (c *StoreCommand) Synopsis() string { return "Encrypt and store a new credential" }

func (c *StoreCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault store -type=<type> [options]

  Reads the secret from stdin, encrypts it under a key derived from the
  master secret, and stores the resulting record.  Structured types
  (banking-login, service-account) expect a JSON object with "username"
  and "secret" fields.

Options:

  -type=<type>                One of: api-key, service-account,
                              banking-login, database-secret, other.
  -description=<text>         Free-form description.
  -tags=<a,b,c>               Comma separated tags.
  -expire=<RFC3339>           Expiration time; must be in the future.
  -rotation-policy=<policy>   One of: manual, scheduled, on-expiry-only.
`)
}

func (c *StoreCommand) Run(args []string) int {
	ctx := context.Background()
	f := flag.NewFlagSet("store", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	typ := f.String("type", "", "")
	description := f.String("description", "", "")
	tags := f.String("tags", "", "")
	expire := f.String("expire", "", "")
	rotationPolicy := f.String("rotation-policy", "", "")
	if err := f.Parse(args); err != nil {
		c.UI.Error(c.Help())
		return 1
	}

	var opts []store.Option
	if *description != "" {
		opts = append(opts, store.WithDescription(*description))
	}
	if *tags != "" {
		opts = append(opts, store.WithTags(strings.Split(*tags, ",")...))
	}
	if *expire != "" {
		t, err := time.Parse(time.RFC3339, *expire)
		if err != nil {
			c.UI.Error(fmt.Sprintf("invalid -expire %q: must be RFC3339", *expire))
			return 1
		}
		opts = append(opts, store.WithExpireTime(t))
	}
	if *rotationPolicy != "" {
		opts = append(opts, store.WithRotationPolicy(store.RotationPolicy(*rotationPolicy)))
	}

	secret, err := io.ReadAll(os.Stdin)
	if err != nil {
		c.UI.Error("failed to read secret from stdin: " + err.Error())
		return 1
	}
	secret = []byte(strings.TrimRight(string(secret), "\r\n"))

	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	cred, err := srv.vault.StoreCredential(ctx, srv.principal, store.CredentialType(*typ), audit.Secret(secret), opts...)
	if err != nil {
		return c.printErr(err)
	}
	return c.printJSON(cred)
}

// GetCommand retrieves and decrypts a credential, printing the secret to
// stdout.
type GetCommand struct {
	baseCommand
}

func (c *GetCommand) Synopsis() string { return "Retrieve and decrypt a credential" }

func (c *GetCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault get <id>

  Decrypts the credential and writes the plaintext secret to stdout.
  Metadata is written to stderr.
`)
}

func (c *GetCommand) Run(args []string) int {
	ctx := context.Background()
	if len(args) != 1 {
		c.UI.Error(c.Help())
		return 1
	}
	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	secret, cred, err := srv.vault.RetrieveCredential(ctx, srv.principal, args[0])
	if err != nil {
		return c.printErr(err)
	}
	c.UI.Warn(fmt.Sprintf("id: %s  type: %s  version: %d", cred.PublicId, cred.Type, cred.Version))
	fmt.Fprintln(os.Stdout, string(secret))
	return 0
}

// ListCommand lists credential metadata with expiration standing.
type ListCommand struct {
	baseCommand
}

func (c *ListCommand) Synopsis() string { return "List credentials and their expiration standing" }

func (c *ListCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault list [options]

  Lists credential metadata.  Secrets and key material are never included.

Options:

  -limit=<n>   Maximum number of results.
`)
}

func (c *ListCommand) Run(args []string) int {
	ctx := context.Background()
	f := flag.NewFlagSet("list", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	limit := f.Int("limit", 0, "")
	if err := f.Parse(args); err != nil {
		c.UI.Error(c.Help())
		return 1
	}
	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	var opts []vault.Option
	if *limit > 0 {
		opts = append(opts, vault.WithLimit(*limit))
	}
	statuses, err := srv.vault.ListCredentials(ctx, srv.principal, opts...)
	if err != nil {
		return c.printErr(err)
	}
	return c.printJSON(statuses)
}

// RotateCommand re-encrypts a credential under a freshly derived key.
type RotateCommand struct {
	baseCommand
}

func (c *RotateCommand) Synopsis() string { return "Re-encrypt a credential under a fresh key" }

func (c *RotateCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault rotate <id>

  Decrypts the credential, derives a fresh key from a new salt, and
  re-encrypts in place.  The record's version advances.
`)
}

func (c *RotateCommand) Run(args []string) int {
	ctx := context.Background()
	if len(args) != 1 {
		c.UI.Error(c.Help())
		return 1
	}
	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	cred, err := srv.vault.RotateCredential(ctx, srv.principal, args[0])
	if err != nil {
		return c.printErr(err)
	}
	return c.printJSON(cred)
}

// UpdateCommand changes credential metadata.  Ciphertext and key material
// can only change through rotate.
type UpdateCommand struct {
	baseCommand
}

func (c *UpdateCommand) Synopsis() string { return "Update credential metadata" }

func (c *UpdateCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault update <id> -version=<n> [options]

  Updates metadata on an existing credential.  The -version flag must
  match the record's current version or the update is rejected.

Options:

  -version=<n>               Current record version (required).
  -description=<text>        New description; empty string clears it.
  -tags=<a,b,c>              Replacement tags; empty string clears them.
  -expire=<RFC3339>          New expiration time; empty string clears it.
  -rotation-policy=<policy>  New rotation policy.
`)
}

func (c *UpdateCommand) Run(args []string) int {
	ctx := context.Background()
	if len(args) < 1 {
		c.UI.Error(c.Help())
		return 1
	}
	publicId := args[0]
	f := flag.NewFlagSet("update", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	version := f.Uint("version", 0, "")
	description := f.String("description", "", "")
	tags := f.String("tags", "", "")
	expire := f.String("expire", "", "")
	rotationPolicy := f.String("rotation-policy", "", "")
	if err := f.Parse(args[1:]); err != nil {
		c.UI.Error(c.Help())
		return 1
	}
	if *version == 0 {
		c.UI.Error("-version is required")
		return 1
	}

	cred := store.AllocCredential()
	cred.PublicId = publicId
	var mask []string
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "description":
			cred.Description = *description
			mask = append(mask, "Description")
		case "tags":
			if *tags != "" {
				cred.Tags = strings.Split(*tags, ",")
			}
			mask = append(mask, "Tags")
		case "expire":
			if *expire != "" {
				t, err := time.Parse(time.RFC3339, *expire)
				if err == nil {
					cred.ExpireTime = &t
				}
			}
			mask = append(mask, "ExpireTime")
		case "rotation-policy":
			cred.RotationPolicy = store.RotationPolicy(*rotationPolicy)
			mask = append(mask, "RotationPolicy")
		}
	})
	if *expire != "" && cred.ExpireTime == nil {
		c.UI.Error(fmt.Sprintf("invalid -expire %q: must be RFC3339", *expire))
		return 1
	}
	if len(mask) == 0 {
		c.UI.Error("nothing to update")
		return 1
	}

	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	updated, err := srv.vault.UpdateCredential(ctx, srv.principal, cred, uint32(*version), mask)
	if err != nil {
		return c.printErr(err)
	}
	return c.printJSON(updated)
}

// DeleteCommand permanently removes a credential.
type DeleteCommand struct {
	baseCommand
}

func (c *DeleteCommand) Synopsis() string { return "Delete a credential" }

func (c *DeleteCommand) Help() string {
	return strings.TrimSpace(`
Usage: credvault delete <id>

  Permanently removes the credential record.  The deletion is audited.
`)
}

func (c *DeleteCommand) Run(args []string) int {
	ctx := context.Background()
	if len(args) != 1 {
		c.UI.Error(c.Help())
		return 1
	}
	srv, err := c.setup(ctx)
	if err != nil {
		return c.printErr(err)
	}
	defer srv.Shutdown()

	if err := srv.vault.DeleteCredential(ctx, srv.principal, args[0]); err != nil {
		return c.printErr(err)
	}
	c.UI.Output("deleted " + args[0])
	return 0
}

func (c *baseCommand) printJSON(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(string(out))
	return 0
}
