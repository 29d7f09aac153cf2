package main

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/form"
)

func (cli *commandLine) submitCmd() *cobra.Command {
	var (
		sets    []string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit <kind>",
		Short: "Fill in and submit a form",
		Long: `Fill in and submit a form.

Kinds: registration, login, demo-request, student-info

Values are given as --set field=value. Flags take true/false, documents take
name:size[:contentType] and may be repeated. A missing password is prompted for.`,
		Example: `  edupay submit login --set email=asha@school.tz
  edupay submit student-info --set fullName="Juma Mollel" --set grade=5 --set documents=birth.pdf:20480`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := form.ParseKind(args[0])
			if err != nil {
				return errors.Errorf("unknown form kind %q (one of %s)", args[0], kindNames())
			}
			return cli.submit(kind, sets, timeout)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value, repeatable")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the submission")
	return cmd
}

func (cli *commandLine) submit(kind form.Kind, sets []string, timeout time.Duration) error {
	raw, err := parseSets(kind, sets)
	if err != nil {
		return err
	}
	if kind.Has(form.FieldPassword) {
		if _, ok := raw[string(form.FieldPassword)]; !ok {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			raw[string(form.FieldPassword)] = mustMarshal(pwd)
		}
	}

	view, err := cli.forms.Open(kind, raw)
	if err != nil {
		return cli.reportInvalid(err)
	}
	defer func() { _ = cli.forms.Close(view.ID) }()

	if view, err = cli.forms.Submit(view.ID); err != nil {
		return cli.reportInvalid(err)
	}
	cli.println("Submitting...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := cli.forms.Wait(ctx, view.ID); err != nil {
		return errors.Wrap(err, "waiting for submission")
	}
	if view, err = cli.forms.View(view.ID); err != nil {
		return err
	}

	if view.Status == form.StatusFailed {
		cli.println(errStyle.Render(view.Failure))
		return errors.New(view.Failure)
	}
	if view.Confirmation != nil {
		cli.println(titleStyle.Render(view.Confirmation.Title))
		cli.println(view.Confirmation.Message)
	}
	if view.FollowUp != "" {
		cli.printf("Next: edupay submit %s\n", view.FollowUp)
	}
	if view.NavigateTo != "" {
		cli.printf("Continue at %s\n", view.NavigateTo)
	} else if kind == form.KindLogin {
		cli.printf("Continue at %s\n", form.RouteDashboard)
	}
	return nil
}

func (cli *commandLine) promptPassword() (string, error) {
	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(cli.stdin)
	cli.println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// reportInvalid prints field errors, one per line, before returning err.
func (cli *commandLine) reportInvalid(err error) error {
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok {
		return err
	}
	for _, fErr := range vErr.Fields {
		cli.println(errStyle.Render(fErr.Field + ": " + fErr.Error))
	}
	return errors.New("form is invalid")
}

// parseSets turns field=value pairs into raw form values.
func parseSets(kind form.Kind, sets []string) (map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage, len(sets))
	var docs []form.Document

	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --set %q, want field=value", set)
		}
		f := form.Field(name)
		if !kind.Has(f) {
			return nil, errors.Errorf("%s has no field %q", kind, name)
		}

		switch {
		case f.IsFlag():
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, errors.Errorf("%s: want true or false, got %q", name, value)
			}
			raw[name] = mustMarshal(b)
		case f.IsFiles():
			doc, err := parseDocument(value)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		default:
			raw[name] = mustMarshal(value)
		}
	}
	if docs != nil {
		raw[string(form.FieldDocuments)] = mustMarshal(docs)
	}
	return raw, nil
}

// parseDocument reads name:size[:contentType].
func parseDocument(s string) (form.Document, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return form.Document{}, errors.Errorf("invalid document %q, want name:size[:contentType]", s)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return form.Document{}, errors.Errorf("invalid document size %q", parts[1])
	}
	doc := form.Document{Name: parts[0], Size: size}
	if len(parts) == 3 {
		doc.ContentType = parts[2]
	}
	return doc, nil
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
