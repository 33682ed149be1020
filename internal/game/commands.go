package game

// Commands are the only way anything outside the actor goroutine touches
// room state. Each carries exactly what the handler needs; replies go over
// buffered channels so the actor never blocks on a caller.

type command interface{ isCommand() }

type joinCmd struct {
	nickname string
	sess     Session // nil for an HTTP seat reservation
	reply    chan error
}

type leaveCmd struct {
	nickname string
}

type headingCmd struct {
	nickname string
	heading  Heading
}

type startCmd struct {
	nickname string
	reply    chan error
}

type endCmd struct {
	nickname string
	reason   string
	reply    chan error
}

type viewCmd struct {
	reply chan RoomView
}

func (joinCmd) isCommand()    {}
func (leaveCmd) isCommand()   {}
func (headingCmd) isCommand() {}
func (startCmd) isCommand()   {}
func (endCmd) isCommand()     {}
func (viewCmd) isCommand()    {}
