package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	alecunits "github.com/alecthomas/units"
	"github.com/lemonberrylabs/unitconv/pkg/api"
	grpcapi "github.com/lemonberrylabs/unitconv/pkg/api/grpc"
	"github.com/lemonberrylabs/unitconv/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API, web UI and gRPC service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8790, env PORT)")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8791, env GRPC_PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().String("body-limit", "", "Maximum request body size, e.g. 512KiB (default 4MiB, env BODY_LIMIT)")
	serveCmd.Flags().Bool("access-log", false, "Log every HTTP request (env ACCESS_LOG=true)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8790")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	grpcPort := envOrDefault("GRPC_PORT", "8791")
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		grpcPort = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	limit := envOrDefault("BODY_LIMIT", "4MiB")
	if v, _ := cmd.Flags().GetString("body-limit"); v != "" {
		limit = v
	}
	bodyLimit, err := alecunits.ParseBase2Bytes(limit)
	if err != nil {
		return fmt.Errorf("invalid body limit %q: %w", limit, err)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	grpcAddr := fmt.Sprintf("%s:%s", host, grpcPort)

	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	if path := catalogPath(cmd); path != "" {
		log.Printf("Unit catalog: %s", path)
	} else {
		log.Printf("In-memory mode (no --catalog specified)")
	}

	accessLog := envOrDefault("ACCESS_LOG", "false") == "true"
	if v, _ := cmd.Flags().GetBool("access-log"); v {
		accessLog = true
	}

	server := api.New(s, api.Config{BodyLimit: int(bodyLimit), AccessLog: accessLog})

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: web UI disabled due to template error: %v", r)
			}
		}()
		web.New(s).Register(server.App())
	}()

	grpcServer := grpcapi.New(s)
	go func() {
		log.Printf("gRPC server listening on %s", grpcAddr)
		if err := grpcServer.Serve(grpcAddr); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down unitconv...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("unitconv listening on %s (body limit %s)", addr, bodyLimit)
	return server.Listen(addr)
}
