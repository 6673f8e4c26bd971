package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/dmengine/internal/gameserver"
)

const remoteTimeout = 10 * time.Second

func newRemoteCmd() *cobra.Command {
	var addr string
	var bypass bool
	remote := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running dmserver",
	}
	remote.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:50051", "dmserver gRPC address")

	exec := &cobra.Command{
		Use:   "exec [batch.json]",
		Short: "Submit a directive batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := readBatch(args[0])
			if err != nil {
				return err
			}
			data, err := json.Marshal(map[string]any{"directives": raws, "bypass": bypass})
			if err != nil {
				return err
			}
			req := &structpb.Struct{}
			if err := protojson.Unmarshal(data, req); err != nil {
				return fmt.Errorf("encoding batch: %w", err)
			}
			return withClient(addr, func(ctx context.Context, c *gameserver.Client) error {
				resp, err := c.Execute(ctx, req)
				if err != nil {
					return err
				}
				out, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}
	exec.Flags().BoolVar(&bypass, "bypass", false, "skip the approval gate")

	snap := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the server's game state snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(addr, func(ctx context.Context, c *gameserver.Client) error {
				resp, err := c.Snapshot(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), resp.GetValue())
				return err
			})
		},
	}

	approve := &cobra.Command{
		Use:   "approve [pending-id]",
		Short: "Approve a pending batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(addr, func(ctx context.Context, c *gameserver.Client) error {
				resp, err := c.Approve(ctx, args[0])
				if err != nil {
					return err
				}
				out, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}

	remote.AddCommand(exec, snap, approve)
	return remote
}

func withClient(addr string, fn func(context.Context, *gameserver.Client) error) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	return fn(ctx, gameserver.NewClient(conn))
}
