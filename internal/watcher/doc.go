// Package watcher reports changes to the generator's input documents so
// `rmkgen generate --watch` can regenerate after every save.
//
// fsnotify watches the directories holding the files, since editors often
// save by writing a temporary file and renaming it over the original.
// Where fsnotify is unavailable the watcher polls the files instead.
// Events are debounced so one save produces one batch.
//
// Usage:
//
//	w, err := watcher.New([]string{"keyboard.toml", "vial.json"}, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go func() { _ = w.Run(ctx) }()
//
//	for batch := range w.Events() {
//	    // regenerate
//	}
package watcher
