package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/billbook/internal/lock"
	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Protect billbook with a PIN",
}

var pinSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set or change the PIN (4 to 6 digits)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		gate := appInstance.Gate

		set, err := gate.IsPinSet(ctx)
		if err != nil {
			return err
		}
		if set {
			current, err := readPin("Current PIN: ")
			if err != nil {
				return err
			}
			ok, err := gate.VerifyPin(ctx, current)
			if err != nil {
				return err
			}
			if !ok {
				return lock.ErrWrongPin
			}
		}

		pin, err := readPin("New PIN: ")
		if err != nil {
			return err
		}
		if err := lock.ValidatePin(pin); err != nil {
			return err
		}

		confirm, err := readPin("Confirm PIN: ")
		if err != nil {
			return err
		}
		if pin != confirm {
			return errors.New("PINs do not match")
		}

		if err := gate.SetPin(ctx, pin); err != nil {
			return err
		}

		fmt.Println("✓ PIN set. Run `billbook lock` to lock this machine.")
		return nil
	},
}

var pinRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := readPin("Current PIN: ")
		if err != nil {
			return err
		}

		if err := appInstance.Gate.RemovePin(context.Background(), pin); err != nil {
			return err
		}

		fmt.Println("✓ PIN removed")
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:         "unlock",
	Short:       "Unlock billbook on this machine",
	Annotations: map[string]string{skipGate: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		gate := appInstance.Gate

		locked, err := gate.IsLocked(ctx)
		if err != nil {
			return err
		}
		if !locked {
			fmt.Println("Already unlocked")
			return nil
		}

		pin, err := readPin("PIN: ")
		if err != nil {
			return err
		}

		if err := gate.Unlock(ctx, pin); err != nil {
			return err
		}

		fmt.Println("✓ Unlocked")
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock billbook on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := appInstance.Gate.IsPinSet(context.Background())
		if err != nil {
			return err
		}
		if !set {
			return fmt.Errorf("%w: run `billbook pin set` first", lock.ErrNoPin)
		}

		if err := appInstance.Gate.Lock(); err != nil {
			return err
		}

		fmt.Println("✓ Locked")
		return nil
	},
}

func init() {
	pinCmd.AddCommand(pinSetCmd)
	pinCmd.AddCommand(pinRemoveCmd)
}
