// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkarchive"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/clock"
	"github.com/bureau-foundation/bookmarks/lib/netutil"
	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
	"github.com/bureau-foundation/bookmarks/lib/sealed"
	"github.com/bureau-foundation/bookmarks/lib/secret"
)

// maxArchiveFileSize bounds what import reads from disk or stdin. The
// compressed payload never exceeds the body limit by much.
const maxArchiveFileSize = 2 * bookmarkarchive.MaxBodySize

// archiveResult describes an archive written or read.
type archiveResult struct {
	Path            string    `json:"path,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Compression     string    `json:"compression"`
	Encrypted       bool      `json:"encrypted"`
	GlobalRooms     int       `json:"global_rooms"`
	GlobalBookmarks int       `json:"global_bookmarks"`
	Rooms           int       `json:"rooms"`
	GlobalDigest    string    `json:"global_digest"`
	DryRun          bool      `json:"dry_run,omitempty"`
}

func describeArchive(archive bookmarkarchive.Archive, header bookmarkarchive.Header) archiveResult {
	return archiveResult{
		CreatedAt:       archive.CreatedAt.UTC(),
		Compression:     header.Compression.String(),
		Encrypted:       header.Encrypted,
		GlobalRooms:     archive.Global.Len(),
		GlobalBookmarks: archive.Global.Count(),
		Rooms:           len(archive.Rooms),
		GlobalDigest:    header.GlobalDigest.String(),
	}
}

// loadArchive gathers every bookmark document, from the homeserver
// when remote is set and from the local index otherwise.
func loadArchive(ctx context.Context, connection *Connection, remote bool, logger *slog.Logger) (bookmarkarchive.Archive, error) {
	if remote {
		manager, session, err := connection.Manager(logger)
		if err != nil {
			return bookmarkarchive.Archive{}, err
		}
		defer session.Close()
		snapshot, err := manager.LoadSnapshot(ctx)
		if err != nil {
			return bookmarkarchive.Archive{}, homeserverError(err, "loading bookmarks")
		}
		return bookmarkarchive.Archive{Global: snapshot.Global, Rooms: snapshot.Rooms}, nil
	}

	index, err := connection.Index(ctx, logger)
	if err != nil {
		return bookmarkarchive.Archive{}, err
	}
	defer index.Close()

	global, err := index.Global(ctx)
	if err != nil {
		return bookmarkarchive.Archive{}, cli.Internal("reading index: %w", err)
	}
	rooms, err := index.Rooms(ctx, bookmarkindex.ScopeRoom)
	if err != nil {
		return bookmarkarchive.Archive{}, cli.Internal("reading index: %w", err)
	}
	archive := bookmarkarchive.Archive{
		Global: global,
		Rooms:  make(map[ref.RoomID]bookmark.RoomContent, len(rooms)),
	}
	for _, room := range rooms {
		content, err := index.Room(ctx, room)
		if err != nil {
			return bookmarkarchive.Archive{}, cli.Internal("reading index: %w", err)
		}
		archive.Rooms[room] = content
	}
	return archive, nil
}

// writeFileAtomic writes data to a temporary file beside path and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), ".bookmarks-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}

	success = true
	return nil
}

// --- export ---

type exportParams struct {
	Connection
	cli.JSONOutput
	Output      string   `json:"output"      flag:"output,o"    desc:"archive path, or - for stdout (default: a timestamped file in paths.archives)"`
	Compression string   `json:"compression" flag:"compression" desc:"zstd, lz4, or none (default: archive.compression)"`
	Recipients  []string `json:"recipients"  flag:"recipient"   desc:"age public key to encrypt to, in addition to archive.recipients (repeatable)"`
	Plain       bool     `json:"plain"       flag:"plain"       desc:"do not encrypt, even when archive.recipients is set"`
	Remote      bool     `json:"remote"      flag:"remote"      desc:"export from the homeserver instead of the local index"`
}

func exportCommand(stdout io.Writer, clock clock.Clock) *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Write all bookmarks to an archive",
		Description: `Write the global bookmarks document and every room bookmarks document
to a single archive file. The archive is compressed, and encrypted to
the age recipients from archive.recipients and --recipient.

The clear-text header records a digest of the global document, so
"bookmarks digest" can compare an archive with the live state without
decrypting it.`,
		Usage: "bookmarks export [flags]",
		Examples: []cli.Example{
			{
				Description: "Export from the homeserver to a chosen file",
				Command:     "bookmarks export --remote --output ~/backup/bookmarks.bmk",
			},
			{
				Description: "Stream an unencrypted lz4 archive",
				Command:     "bookmarks export --plain --compression lz4 -o - > bookmarks.bmk",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			cfg, err := params.Config()
			if err != nil {
				return err
			}

			compressionName := params.Compression
			if compressionName == "" {
				compressionName = cfg.Archive.Compression
			}
			compression, err := bookmarkarchive.ParseCompression(compressionName)
			if err != nil {
				return cli.Validation("--compression: %w", err)
			}

			var recipients []string
			if !params.Plain {
				recipients = append(recipients, cfg.Archive.Recipients...)
				recipients = append(recipients, params.Recipients...)
			} else if len(params.Recipients) > 0 {
				return cli.Validation("--plain and --recipient are mutually exclusive")
			}
			for _, recipient := range recipients {
				if err := sealed.ParsePublicKey(recipient); err != nil {
					return cli.Validation("recipient %q: %w", recipient, err)
				}
			}

			archive, err := loadArchive(ctx, &params.Connection, params.Remote, logger)
			if err != nil {
				return err
			}
			archive.CreatedAt = clock.Now()

			var encoded bytes.Buffer
			options := bookmarkarchive.Options{Compression: compression, Recipients: recipients}
			if err := bookmarkarchive.Write(&encoded, archive, options); err != nil {
				return cli.Internal("encoding archive: %w", err)
			}

			if params.Output == "-" {
				_, err := stdout.Write(encoded.Bytes())
				return err
			}

			path := params.Output
			if path == "" {
				if err := cfg.EnsurePaths(); err != nil {
					return cli.Internal("%w", err)
				}
				path = filepath.Join(cfg.Paths.Archives,
					"bookmarks-"+archive.CreatedAt.UTC().Format("20060102T150405Z")+".bmk")
			}
			if err := writeFileAtomic(path, encoded.Bytes()); err != nil {
				return cli.Internal("%w", err)
			}

			header, err := bookmarkarchive.ReadHeader(bytes.NewReader(encoded.Bytes()))
			if err != nil {
				return cli.Internal("re-reading archive header: %w", err)
			}
			result := describeArchive(archive, header)
			result.Path = path
			logger.Info("exported bookmarks",
				"path", path,
				"bytes", encoded.Len(),
				"encrypted", result.Encrypted,
			)

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "Wrote %s\n", path)
			fmt.Fprintf(stdout, "  %d global bookmark(s) across %d room(s), %d room document(s)\n",
				result.GlobalBookmarks, result.GlobalRooms, result.Rooms)
			fmt.Fprintf(stdout, "  global digest %s\n", result.GlobalDigest)
			return nil
		},
	}
}

// --- import ---

type importParams struct {
	Connection
	cli.JSONOutput
	Identity string `json:"identity" flag:"identity,i" desc:"age identity file for encrypted archives (default: archive.identity_file)"`
	JSONC    bool   `json:"jsonc"    flag:"jsonc"      desc:"FILE is a hand-edited JSON document with comments, not an archive"`
	Room     string `json:"room"     flag:"room,r"     desc:"with --jsonc, import FILE as this room's bookmarks instead of the global document"`
	DryRun   bool   `json:"dry_run"  flag:"dry-run"    desc:"decode and verify FILE without writing anything"`
}

func importCommand(stdout io.Writer) *cli.Command {
	var params importParams

	return &cli.Command{
		Name:    "import",
		Summary: "Restore bookmarks from an archive",
		Description: `Read an archive written by "bookmarks export", verify its digests,
and write every document it holds back to the homeserver. Documents
for rooms not in the archive are left alone; the global document is
replaced wholesale.

With --jsonc, FILE is a hand-edited JSON document (comments and
trailing commas allowed) holding either the global bookmarks object or,
with --room, one room's bookmark list.

FILE may be - to read stdin.`,
		Usage: "bookmarks import FILE [flags]",
		Examples: []cli.Example{
			{
				Description: "Check an encrypted archive without touching the homeserver",
				Command:     "bookmarks import backup.bmk --identity ~/.config/bookmarks/identity.txt --dry-run",
			},
			{
				Description: "Replace one room's bookmarks from an edited file",
				Command:     "bookmarks import --jsonc --room '!abc:example.org' room.jsonc",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected 1 positional argument, got %d\n\nUsage: bookmarks import FILE [flags]", len(args))
			}
			if params.Room != "" && !params.JSONC {
				return cli.Validation("--room only applies with --jsonc")
			}
			cfg, err := params.Config()
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			var archive bookmarkarchive.Archive
			var header bookmarkarchive.Header
			var importGlobal bool
			if params.JSONC {
				archive, importGlobal, err = parseDocument(data, params.Room)
				if err != nil {
					return err
				}
			} else {
				archive, header, err = readArchive(data, params.Identity, cfg.Archive.IdentityFile)
				if err != nil {
					return err
				}
				importGlobal = true
			}

			result := describeArchive(archive, header)
			result.Path = args[0]
			result.DryRun = params.DryRun
			if params.JSONC {
				result.GlobalDigest = ""
				if importGlobal {
					digest, err := bookmarkarchive.Digest(archive.Global)
					if err != nil {
						return cli.Internal("%w", err)
					}
					result.GlobalDigest = digest.String()
				}
			}

			if !params.DryRun {
				if err := restore(ctx, &params.Connection, archive, importGlobal, logger); err != nil {
					return err
				}
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			verb := "Imported"
			if params.DryRun {
				verb = "Would import"
			}
			if importGlobal {
				fmt.Fprintf(stdout, "%s %d global bookmark(s) across %d room(s)\n",
					verb, result.GlobalBookmarks, result.GlobalRooms)
			}
			if len(archive.Rooms) > 0 || !importGlobal {
				fmt.Fprintf(stdout, "%s %d room document(s)\n", verb, result.Rooms)
			}
			return nil
		},
	}
}

func readInput(path string) ([]byte, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, cli.NotFound("%w", err)
			}
			return nil, cli.Internal("%w", err)
		}
		defer file.Close()
		reader = file
	}
	data, err := netutil.ReadLimited(reader, maxArchiveFileSize)
	if err != nil {
		return nil, cli.Internal("reading %s: %w", path, err)
	}
	return data, nil
}

// parseDocument decodes a JSONC document into an archive holding
// either the global document or one room document. The boolean reports
// whether the global document was given.
func parseDocument(data []byte, room string) (bookmarkarchive.Archive, bool, error) {
	if room == "" {
		global, err := bookmarkarchive.ParseGlobalDocument(data)
		if err != nil {
			return bookmarkarchive.Archive{}, false, cli.Validation("parsing global document: %w", err)
		}
		return bookmarkarchive.Archive{Global: global}, true, nil
	}

	roomID, err := ref.ParseRoomID(room)
	if err != nil {
		return bookmarkarchive.Archive{}, false, cli.Validation("--room: %w", err)
	}
	content, err := bookmarkarchive.ParseRoomDocument(data)
	if err != nil {
		return bookmarkarchive.Archive{}, false, cli.Validation("parsing room document: %w", err)
	}
	return bookmarkarchive.Archive{
		Global: bookmark.NewGlobalContent(),
		Rooms:  map[ref.RoomID]bookmark.RoomContent{roomID: content},
	}, false, nil
}

// readArchive decodes an archive, loading an identity only when the
// header says the payload is encrypted.
func readArchive(data []byte, identityFlag, identityConfig string) (bookmarkarchive.Archive, bookmarkarchive.Header, error) {
	header, err := bookmarkarchive.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return bookmarkarchive.Archive{}, header, cli.Validation("%w", err)
	}

	var identities []*secret.Buffer
	if header.Encrypted {
		path := identityFlag
		if path == "" {
			path = identityConfig
		}
		if path == "" {
			return bookmarkarchive.Archive{}, header, cli.Validation("archive is encrypted").
				WithHint("Pass --identity or set archive.identity_file.")
		}
		identity, err := secret.ReadFromPath(path)
		if err != nil {
			return bookmarkarchive.Archive{}, header, cli.Validation("reading identity: %w", err)
		}
		defer identity.Close()
		identities = append(identities, identity)
	}

	archive, header, err := bookmarkarchive.Read(bytes.NewReader(data), identities...)
	if err != nil {
		if errors.Is(err, bookmarkarchive.ErrDigestMismatch) {
			return bookmarkarchive.Archive{}, header, cli.Validation("archive is corrupt: %w", err)
		}
		return bookmarkarchive.Archive{}, header, cli.Validation("reading archive: %w", err)
	}
	return archive, header, nil
}

// restore writes archive's documents to the homeserver and mirrors
// them into the index.
func restore(ctx context.Context, connection *Connection, archive bookmarkarchive.Archive, includeGlobal bool, logger *slog.Logger) error {
	manager, session, err := connection.Manager(logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if includeGlobal {
		if err := manager.SaveGlobal(ctx, archive.Global); err != nil {
			return homeserverError(err, "writing global bookmarks")
		}
	}
	for room, content := range archive.Rooms {
		if err := manager.SaveRoom(ctx, room, content); err != nil {
			return homeserverError(err, "writing bookmarks for "+room.String())
		}
	}

	index, err := connection.Index(ctx, logger)
	if err != nil {
		logger.Warn("index not updated; run bookmarks sync", "error", err)
		return nil
	}
	defer index.Close()
	if includeGlobal {
		if err := index.ReplaceGlobal(ctx, archive.Global); err != nil {
			logger.Warn("index not updated; run bookmarks sync", "error", err)
			return nil
		}
	}
	for room, content := range archive.Rooms {
		if err := index.ReplaceRoom(ctx, room, content); err != nil {
			logger.Warn("index not updated; run bookmarks sync", "error", err)
			return nil
		}
	}
	return nil
}

// --- digest ---

type digestParams struct {
	Connection
	cli.JSONOutput
	Remote bool   `json:"remote" flag:"remote" desc:"hash the homeserver's document instead of the local index"`
	Expect string `json:"expect" flag:"expect" desc:"digest or archive path to compare against; exits 1 on mismatch"`
}

type digestResult struct {
	Digest   string `json:"digest"`
	Expected string `json:"expected,omitempty"`
	Match    *bool  `json:"match,omitempty"`
}

func digestCommand(stdout io.Writer) *cli.Command {
	var params digestParams

	return &cli.Command{
		Name:    "digest",
		Summary: "Hash the global bookmarks document",
		Description: `Print the BLAKE3 digest of the global bookmarks document's canonical
JSON encoding. Equal documents always produce equal digests.

--expect takes either a 64-character hex digest or the path of an
archive, whose clear-text header carries the digest. A mismatch prints
both values and exits 1.`,
		Usage: "bookmarks digest [flags]",
		Examples: []cli.Example{
			{
				Description: "Check whether the homeserver still matches a backup",
				Command:     "bookmarks digest --remote --expect ~/backup/bookmarks.bmk",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}

			var expected *bookmarkarchive.Hash
			if params.Expect != "" {
				hash, err := expectedDigest(params.Expect)
				if err != nil {
					return err
				}
				expected = &hash
			}

			archive, err := loadArchive(ctx, &params.Connection, params.Remote, logger)
			if err != nil {
				return err
			}
			digest, err := bookmarkarchive.Digest(archive.Global)
			if err != nil {
				return cli.Internal("%w", err)
			}

			result := digestResult{Digest: digest.String()}
			if expected != nil {
				match := digest == *expected
				result.Expected = expected.String()
				result.Match = &match
			}

			done, err := params.EmitJSON(stdout, result)
			if err != nil {
				return err
			}
			if !done {
				fmt.Fprintln(stdout, result.Digest)
				if result.Match != nil && !*result.Match {
					fmt.Fprintf(stdout, "mismatch: expected %s\n", result.Expected)
				}
			}
			if result.Match != nil && !*result.Match {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// expectedDigest accepts a hex digest or an archive path.
func expectedDigest(value string) (bookmarkarchive.Hash, error) {
	if hash, err := bookmarkarchive.ParseHash(value); err == nil {
		return hash, nil
	}
	file, err := os.Open(value)
	if err != nil {
		return bookmarkarchive.Hash{}, cli.Validation("--expect is neither a digest nor a readable archive: %w", err)
	}
	defer file.Close()
	header, err := bookmarkarchive.ReadHeader(file)
	if err != nil {
		return bookmarkarchive.Hash{}, cli.Validation("--expect %s: %w", value, err)
	}
	return header.GlobalDigest, nil
}

// --- inspect ---

type inspectParams struct {
	cli.JSONOutput
	Diagnostic bool `json:"diagnostic" flag:"diag" desc:"print the raw header in CBOR diagnostic notation"`
}

type inspectResult struct {
	CreatedAt    time.Time `json:"created_at"`
	Compression  string    `json:"compression"`
	Encrypted    bool      `json:"encrypted"`
	BodySize     int       `json:"body_size"`
	GlobalDigest string    `json:"global_digest"`
	BodyDigest   string    `json:"body_digest"`
}

func inspectCommand(stdout io.Writer) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show an archive's clear-text header",
		Description: `Print the header of a bookmark archive without decrypting or
decompressing its payload. No configuration or identity is needed.`,
		Usage: "bookmarks inspect [flags] FILE",
		Examples: []cli.Example{
			{
				Description: "Show when a backup was taken and whether it is encrypted",
				Command:     "bookmarks inspect ~/backup/bookmarks.bmk",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one archive path")
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			header, err := bookmarkarchive.ReadHeader(bytes.NewReader(data))
			if err != nil {
				return cli.Validation("%s: %w", args[0], err)
			}

			if params.Diagnostic {
				diagnostic, err := header.Diagnostic()
				if err != nil {
					return cli.Internal("%w", err)
				}
				fmt.Fprintln(stdout, diagnostic)
				return nil
			}

			result := inspectResult{
				CreatedAt:    time.Unix(header.CreatedAt, 0).UTC(),
				Compression:  header.Compression.String(),
				Encrypted:    header.Encrypted,
				BodySize:     header.BodySize,
				GlobalDigest: header.GlobalDigest.String(),
				BodyDigest:   header.BodyDigest.String(),
			}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "created:      %s\n", result.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(stdout, "compression:  %s\n", result.Compression)
			fmt.Fprintf(stdout, "encrypted:    %t\n", result.Encrypted)
			fmt.Fprintf(stdout, "body size:    %d bytes\n", result.BodySize)
			fmt.Fprintf(stdout, "global:       %s\n", result.GlobalDigest)
			fmt.Fprintf(stdout, "body:         %s\n", result.BodyDigest)
			return nil
		},
	}
}

// --- keygen ---

type keygenParams struct {
	Connection
	Output string `json:"output" flag:"output,o" desc:"identity file to create (default: archive.identity_file)"`
}

func keygenCommand(stdout io.Writer, clock clock.Clock) *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Create an age identity for encrypted archives",
		Description: `Generate an X25519 keypair, write the private half to an identity
file with mode 0600, and print the public key. Add the public key to
archive.recipients to encrypt future exports to it.

An existing identity file is never overwritten.`,
		Usage:  "bookmarks keygen [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			path := params.Output
			if path == "" {
				cfg, err := params.Config()
				if err != nil {
					return err
				}
				path = cfg.Archive.IdentityFile
			}
			if path == "" {
				return cli.Validation("no identity file path").
					WithHint("Pass --output or set archive.identity_file.")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return cli.Internal("%w", err)
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer keypair.Close()

			if err := keypair.WriteIdentityFile(path, clock.Now()); err != nil {
				if errors.Is(err, fs.ErrExist) {
					return cli.Validation("%s already exists", path).
						WithHint("Choose another --output or remove the old identity first.")
				}
				return cli.Internal("%w", err)
			}
			logger.Info("wrote identity file", "path", path)

			fmt.Fprintln(stdout, keypair.PublicKey)
			return nil
		},
	}
}
