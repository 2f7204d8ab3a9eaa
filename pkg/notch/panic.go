package notch

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/notchctl/notch/pkg/notch/util"
)

const (
	crashlogFilename        = "notch-crash-%s.log"
	crashlogTimestampFormat = "2006.01.02-15.04.05"

	crashMessage = `-----------------------------------------------------------------
                        notch crashlog
-----------------------------------------------------------------
Unfortunately, notch has crashed. This really shouldn't happen!
If you've just encountered this, please open an issue and attach this error log.
-----------------------------------------------------------------
Time: %s
Panic occurred: %s
Stack trace:
%s
-----------------------------------------------------------------
`
)

func (n *Notch) recoverFromPanic() {
	r := recover()

	if r == nil {
		return
	}

	// if we got here, we're recovering from a panic!
	crashlogPath, err := writeCrashlog(logDirectory, time.Now(), r, debug.Stack())
	if err != nil {
		panic(err)
	}

	n.logger.Errorw("Encountered and logged panic, crashing",
		"crashlogPath", crashlogPath,
		"error", r)

	n.notifier.Notify("Unexpected crash occurred...",
		fmt.Sprintf("More details in %s", crashlogPath))

	// bye :(
	n.logger.Errorw("Quitting", "exitCode", 1)
	n.logger.Sync()
	os.Exit(1)
}

func writeCrashlog(dir string, now time.Time, r interface{}, stack []byte) (string, error) {

	// that would suck
	if err := util.EnsureDirExists(dir); err != nil {
		return "", fmt.Errorf("ensure crashlog dir exists: %w", err)
	}

	crashlogBytes := bytes.NewBufferString(fmt.Sprintf(crashMessage, now.Format(crashlogTimestampFormat), r, stack))
	crashlogPath := filepath.Join(dir, fmt.Sprintf(crashlogFilename, now.Format(crashlogTimestampFormat)))

	// that would REALLY suck
	if err := ioutil.WriteFile(crashlogPath, crashlogBytes.Bytes(), os.ModePerm); err != nil {
		return "", fmt.Errorf("can't even write the crashlog file contents: %w", err)
	}

	return crashlogPath, nil
}
