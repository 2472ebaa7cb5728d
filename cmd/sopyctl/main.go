// sopyctl - one-shot admin client for the sopy gateway
//
// Sends a single command envelope to the admin socket and prints the
// response. Fields are given as key=value pairs; "id" is sent as a number.
//
//	sopyctl add_backend provider=acme url=http://h1:9000/v1
//	sopyctl add_model_mapping model_name=demo-model provider=acme
//	sopyctl list_backends
//	sopyctl get_user_api_key id=3
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ikignosis/sopy/internal/config"
)

func main() {
	socketPath := flag.String("socket", "", "admin socket path (default: SOPY_ADMIN_SOCKET or "+config.DefaultAdminSocketPath+")")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	path := *socketPath
	if path == "" {
		path = os.Getenv("SOPY_ADMIN_SOCKET")
	}
	if path == "" {
		path = config.DefaultAdminSocketPath
	}

	envelope := map[string]interface{}{"command": args[0]}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid field %q, want key=value\n", arg)
			os.Exit(2)
		}
		if key == "id" {
			id, err := strconv.Atoi(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid id %q: %v\n", value, err)
				os.Exit(2)
			}
			envelope[key] = id
			continue
		}
		envelope[key] = value
	}

	resp, err := send(path, envelope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))

	if status, _ := resp["status"].(string); status != "success" {
		os.Exit(1)
	}
}

// send performs the admin channel's single request/response exchange.
func send(socketPath string, envelope map[string]interface{}) (map[string]interface{}, error) {
	conn, err := net.DialTimeout("unix", socketPath, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("admin socket not available at %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	if err := json.NewEncoder(conn).Encode(envelope); err != nil {
		return nil, err
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sopyctl [-socket PATH] COMMAND [field=value ...]

Commands:
  add_admin_auth name= credentials=     remove_admin_auth name=
  list_admin_auth                       get_admin_auth name=
  add_user_api_key api_key= [description=]
  remove_user_api_key api_key=          list_user_api_keys
  get_user_api_key id=                  activate_user_api_key id=
  deactivate_user_api_key id=
  add_backend provider= url=            remove_backend provider= url=
  list_backends                         get_backend provider=
  add_model_mapping model_name= provider=
  remove_model_mapping model_name=      list_model_mappings
  get_model_mapping model_name=
`)
}
