// 検証フローを端末から操作する対話型クライアント。
// 現在のパスに応じてページコントローラーを切り替えるイベントループで、
// ブラウザのページ遷移を模倣します。
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	wire "license_backend/internal/api"
	clientapi "license_backend/internal/client/api"
	"license_backend/internal/client/flow"
	"license_backend/internal/client/notify"
)

// pages はページ遷移先のパスです。
const (
	pageDetect         = "/detect"
	pageVerify         = "/verify"
	pageResult         = "/result"
	pageResultOverride = "/result?verified=true"
	pageAdmin          = "/admin"
)

// navigator は現在のパスを保持し、flow.Navigatorを実装します。
type navigator struct {
	path string
}

func (n *navigator) Navigate(path string) {
	n.path = path
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	client, err := clientapi.NewClient(clientapi.LoadConfig())
	if err != nil {
		log.Fatalf("failed to create API client: %v", err)
	}

	notifications := notify.NewCenter(notify.WithSink(func(message string) {
		fmt.Println("[NOTICE]", message)
	}))

	nav := &navigator{path: pageDetect}
	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)

	for {
		switch {
		case nav.path == pageDetect:
			runDetectPage(ctx, in, client, notifications, nav)
		case strings.HasPrefix(nav.path, pageVerify):
			runVerifyPage(ctx, in, client, notifications, nav)
		case strings.HasPrefix(nav.path, pageResult):
			runResultPage(ctx, in, client, nav)
		case nav.path == pageAdmin:
			runAdminPage(ctx, in, client, notifications, nav)
		default:
			nav.path = pageDetect
		}
		if nav.path == "" {
			return
		}
	}
}

// prompt は1行読み取り、EOFの場合はfalseを返します。
func prompt(in *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func runDetectPage(ctx context.Context, in *bufio.Scanner, client *clientapi.Client,
	notifications *notify.Center, nav *navigator) {
	d := flow.NewDetectionController(client, notifications, nav)
	fmt.Println("-- Detect --  commands: select <path> / submit / proceed / recrop / admin / quit")

	for nav.path == pageDetect {
		line, ok := prompt(in, "detect> ")
		if !ok {
			nav.path = ""
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "select":
			f, err := os.Open(arg)
			if err != nil {
				fmt.Println("cannot open:", err)
				continue
			}
			err = d.SelectFile(arg, f)
			_ = f.Close()
			if err != nil {
				fmt.Println("cannot read:", err)
				continue
			}
			fmt.Println("selected:", arg)
		case "submit":
			d.Submit(ctx)
			if d.State() == flow.DetectionDetected {
				fmt.Printf("cropped: %s (confidence %s)\n", d.CroppedImage(), d.Confidence())
			}
		case "proceed":
			d.Proceed()
		case "recrop":
			d.Recrop()
		case "admin":
			nav.path = pageAdmin
		case "quit":
			nav.path = ""
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func runVerifyPage(ctx context.Context, in *bufio.Scanner, client *clientapi.Client,
	notifications *notify.Center, nav *navigator) {
	v := flow.NewVerificationController(client, notifications, nav)
	fmt.Println("-- Verify --  commands: show / set <dl|name|till> <value> / submit / admin / back / quit")

	// 入場と同時に抽出する
	v.Enter(ctx)
	if v.State() == flow.VerificationAwaitingConfirmation {
		printFields(v.Fields())
	}

	for strings.HasPrefix(nav.path, pageVerify) {
		line, ok := prompt(in, "verify> ")
		if !ok {
			nav.path = ""
			return
		}
		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "show":
			printFields(v.Fields())
		case "set":
			field, value, _ := strings.Cut(rest, " ")
			fields := v.Fields()
			switch field {
			case "dl":
				fields.DLNumber = value
			case "name":
				fields.Name = value
			case "till":
				fields.ValidTill = value
			default:
				fmt.Println("unknown field:", field)
				continue
			}
			v.SetFields(fields)
		case "submit":
			v.Submit(ctx)
		case "admin":
			nav.path = pageAdmin
		case "back":
			nav.path = pageDetect
		case "quit":
			nav.path = ""
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func runResultPage(ctx context.Context, in *bufio.Scanner, client *clientapi.Client, nav *navigator) {
	r := flow.NewResultController(client)
	r.Load(ctx, nav.path == pageResultOverride)

	switch r.Panel() {
	case flow.PanelSuccess:
		d := r.Details()
		fmt.Println("== VERIFIED ==")
		fmt.Println("Name:      ", d.Name)
		fmt.Println("DL Number: ", d.DLNumber)
		fmt.Println("Valid Till:", d.ValidTill)
	case flow.PanelExpired:
		fmt.Println("== EXPIRED ==")
	default:
		fmt.Println("== ACCESS DENIED ==")
	}

	for strings.HasPrefix(nav.path, pageResult) {
		line, ok := prompt(in, "result> ")
		if !ok {
			nav.path = ""
			return
		}
		switch line {
		case "restart":
			nav.path = pageDetect
		case "quit":
			nav.path = ""
		default:
			fmt.Println("commands: restart / quit")
		}
	}
}

func runAdminPage(ctx context.Context, in *bufio.Scanner, client *clientapi.Client,
	notifications *notify.Center, nav *navigator) {
	a := flow.NewAdminController(client, notifications, nav)
	fmt.Println("-- Admin Override --")

	for nav.path == pageAdmin {
		password, ok := prompt(in, "password (empty to cancel): ")
		if !ok {
			nav.path = ""
			return
		}
		if password == "" {
			nav.path = pageDetect
			return
		}
		a.Submit(ctx, password)
	}
}

func printFields(fields wire.LicenseData) {
	fmt.Println("DL Number: ", fields.DLNumber)
	fmt.Println("Name:      ", fields.Name)
	fmt.Println("Valid Till:", fields.ValidTill)
}
