// Command nostrcli is a small demonstration CLI exercising the core
// library end to end: key generation, event signing, bech32 encoding, and
// connecting to a relay to publish a note. It replaces the teacher's
// relay-server main.go with a client-side entrypoint, since this module
// is a client library rather than a relay.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"cosanostra/pkg/bech32"
	"cosanostra/pkg/event"
	"cosanostra/pkg/keys"
	"cosanostra/pkg/logger"
	"cosanostra/pkg/relay"
	"cosanostra/pkg/wire"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = keygen()
	case "publish":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		err = publish(os.Args[2], os.Args[3])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "nostrcli:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: nostrcli keygen")
	fmt.Fprintln(os.Stderr, "       nostrcli publish <relay-url> <private-key-hex>")
}

func keygen() error {
	kp, err := keys.Generate()
	if err != nil {
		return err
	}
	defer kp.Zero()

	npub, err := bech32.EncodePublicKey(kp.PublicKeyHex())
	if err != nil {
		return err
	}
	nsec, err := bech32.EncodeSecretKey(kp.PrivateKeyHex())
	if err != nil {
		return err
	}

	fmt.Println("pubkey:", kp.PublicKeyHex())
	fmt.Println("npub:  ", npub)
	fmt.Println("nsec:  ", nsec)
	return nil
}

func publish(relayURL, privKeyHex string) error {
	kp, err := keys.FromPrivateKeyHex(privKeyHex)
	if err != nil {
		return err
	}
	defer kp.Zero()

	unsigned := event.New(1).Content("hello from nostrcli").Unsigned()
	signed, err := kp.Sign(unsigned)
	if err != nil {
		return err
	}

	log := logger.New(logrus.New())
	sess := relay.New(relayURL, relay.WithLogger(log))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer sess.Disconnect()

	if err := sess.Send(wire.NewEventMessage(signed)); err != nil {
		return err
	}

	fmt.Println("published event", signed.ID)
	return nil
}
