package notifier

import (
	"fmt"
	"log"
	"time"
)

// Notifier abstracts the delivery channel (email/push later; console now).
type Notifier interface {
	Notify(subject, message string) error
}

type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(subject, message string) error {
	log.Printf("[notify] %s :: %s\n", subject, message)
	return nil
}

func HumanTimeRange(startUnix, endUnix int64) string {
	st := time.Unix(startUnix, 0).Local()
	et := time.Unix(endUnix, 0).Local()
	return fmt.Sprintf("%s to %s", st.Format("2006-01-02 15:04"), et.Format("15:04"))
}
