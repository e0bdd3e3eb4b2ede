package session

// FakeHandle is an in-memory Handle for tests and for use as a test double. It records the
// calls made to it.
type FakeHandle struct {
	URL      string
	PageHTML string
	PageName string
	Image    []byte

	CloseErr error
	QuitErr  error

	Visited []string
	Closes  int
	Quits   int
	Resets  int
	Shots   int
}

// NewFakeHandle creates a fake showing an empty page.
func NewFakeHandle() *FakeHandle {
	return &FakeHandle{
		URL:   "about:blank",
		Image: []byte("\x89PNG fake"),
	}
}

// Navigate records url as visited.
func (f *FakeHandle) Navigate(url string) error {
	f.Visited = append(f.Visited, url)
	f.URL = url
	return nil
}

// CurrentURL returns the last visited URL.
func (f *FakeHandle) CurrentURL() string {
	return f.URL
}

// Title returns PageName.
func (f *FakeHandle) Title() (string, error) {
	return f.PageName, nil
}

// PageSource returns PageHTML.
func (f *FakeHandle) PageSource() (string, error) {
	return f.PageHTML, nil
}

// Screenshot returns Image.
func (f *FakeHandle) Screenshot() ([]byte, error) {
	f.Shots++
	return f.Image, nil
}

// Reset goes back to about:blank.
func (f *FakeHandle) Reset() error {
	f.Resets++
	f.URL = "about:blank"
	return nil
}

// Close counts the call and returns CloseErr.
func (f *FakeHandle) Close() error {
	f.Closes++
	return f.CloseErr
}

// Quit counts the call and returns QuitErr.
func (f *FakeHandle) Quit() error {
	f.Quits++
	return f.QuitErr
}
