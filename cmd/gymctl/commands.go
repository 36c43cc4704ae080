package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-gym-client/apperr"
	"github.com/jrsteele09/go-gym-client/auth"
	"github.com/jrsteele09/go-gym-client/exercises"
	"github.com/jrsteele09/go-gym-client/history"
	"github.com/jrsteele09/go-gym-client/internal/utils"
	"github.com/jrsteele09/go-gym-client/users"
	"github.com/pkg/errors"
)

const msgSignInFailed = "Sign in failed. Check your e-mail and password."

var errUsage = errors.New("usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"signin":    signInCommand,
	"signup":    signUpCommand,
	"signout":   signOutCommand,
	"whoami":    whoAmICommand,
	"groups":    groupsCommand,
	"exercises": exercisesCommand,
	"exercise":  exerciseCommand,
	"catalog":   catalogCommand,
	"done":      doneCommand,
	"history":   historyCommand,
	"profile":   profileCommand,
	"avatar":    avatarCommand,
}

func (a *app) execute(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		usage()
		return errUsage
	}
	return cmd(ctx, a, args)
}

// parse parses args into fs, turning flag errors (already printed by fs) into errUsage
func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func required(fs *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if fs.Lookup(name).Value.String() == "" {
			fmt.Fprintf(os.Stderr, "-%s is required\n", name)
			fs.Usage()
			return errUsage
		}
	}
	return nil
}

func signInCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	email := fs.String("email", "", "E-mail")
	password := fs.String("password", "", "Password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "email", "password"); err != nil {
		return err
	}

	if err := a.manager.SignIn(ctx, *email, *password); err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			return &apperr.Error{Message: msgSignInFailed, Err: err}
		}
		return err
	}
	u := a.manager.User()
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func signUpCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "E-mail")
	password := fs.String("password", "", "Password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "name", "email", "password"); err != nil {
		return err
	}

	created, err := a.manager.SignUp(ctx, users.SignUpRequest{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created for %s. Sign in with: gymctl signin -email %s\n", created.Name, created.Email)
	return nil
}

func signOutCommand(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("signout", flag.ContinueOnError), args); err != nil {
		return err
	}
	if err := a.manager.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func whoAmICommand(_ context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("whoami", flag.ContinueOnError), args); err != nil {
		return err
	}
	if !a.manager.IsAuthenticated() {
		return auth.ErrNotAuthenticated
	}
	u := a.manager.User()
	fmt.Fprintf(a.out, "%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	if avatar := users.AvatarURL(a.client.BaseURL(), &u); avatar != "" {
		fmt.Fprintf(a.out, "avatar: %s\n", avatar)
	}
	return nil
}

func groupsCommand(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("groups", flag.ContinueOnError), args); err != nil {
		return err
	}
	groups, err := a.exercises.Groups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Fprintln(a.out, g)
	}
	return nil
}

func exercisesCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("exercises", flag.ContinueOnError)
	group := fs.String("group", "", "Muscle group")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "group"); err != nil {
		return err
	}

	list, err := a.exercises.ByGroup(ctx, *group)
	if err != nil {
		return err
	}
	return printExercises(a.out, list)
}

func exerciseCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("exercise", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Exercise id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "-id is required")
		return errUsage
	}

	e, err := a.exercises.ByID(ctx, *id)
	if err != nil {
		return err
	}
	base := a.client.BaseURL()
	fmt.Fprintf(a.out, "%s (%s)\n", e.Name, e.Group)
	fmt.Fprintf(a.out, "%d series x %s repetitions\n", e.Series, e.Repetitions)
	fmt.Fprintf(a.out, "thumb: %s\ndemo:  %s\n", exercises.ThumbURL(base, e), exercises.DemoURL(base, e))
	return nil
}

func catalogCommand(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("catalog", flag.ContinueOnError), args); err != nil {
		return err
	}
	catalog, err := a.exercises.Catalog(ctx)
	if err != nil {
		return err
	}
	for _, g := range catalog.Groups {
		fmt.Fprintf(a.out, "== %s\n", g)
		if err := printExercises(a.out, catalog.Exercises[g]); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "%d exercises in %d groups\n", catalog.Count(), len(catalog.Groups))
	return nil
}

func doneCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Exercise id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "-id is required")
		return errUsage
	}

	if err := a.history.Register(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Exercise recorded")
	return nil
}

func historyCommand(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("history", flag.ContinueOnError), args); err != nil {
		return err
	}
	days, err := a.history.ByDay(ctx)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Fprintln(a.out, "No exercises recorded yet")
		return nil
	}
	return printHistory(a.out, days)
}

func profileCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "New display name")
	password := fs.String("password", "", "New password")
	oldPassword := fs.String("old-password", "", "Current password, needed to change it")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "name"); err != nil {
		return err
	}

	update := users.ProfileUpdate{
		Name:        *name,
		Password:    utils.NonEmpty(*password),
		OldPassword: utils.NonEmpty(*oldPassword),
	}
	if err := a.manager.UpdateUser(ctx, update); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s\n", a.manager.User().Name)
	return nil
}

func avatarCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("avatar", flag.ContinueOnError)
	file := fs.String("file", "", "Image file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "file"); err != nil {
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		return errors.Wrap(err, "[avatar] open image")
	}
	defer f.Close()

	updated, err := a.manager.UpdateUserAvatar(ctx, users.Avatar{
		FileName:    filepath.Base(*file),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(*file))),
		Content:     f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Avatar updated: %s\n", users.AvatarURL(a.client.BaseURL(), updated))
	return nil
}

func printExercises(out io.Writer, list []exercises.Exercise) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range list {
		fmt.Fprintf(tw, "%d\t%s\t%dx%s\n", e.ID, e.Name, e.Series, e.Repetitions)
	}
	return tw.Flush()
}

func printHistory(out io.Writer, days []history.ByDay) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range days {
		fmt.Fprintf(tw, "%s\n", day.Title)
		for _, r := range day.Data {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Hour, r.Group, r.Name)
		}
	}
	return tw.Flush()
}
