package checks

import (
	"bufio"
	"fmt"
	"strings"

	"abiverify/internal/cprog"
	"abiverify/internal/devnum"
	"abiverify/internal/verify"
)

type devSample struct {
	major, minor uint32
}

var devSamples = []devSample{
	{0, 0},
	{1, 3},
	{8, 1},
	{259, 0},
	{0xfff, 0xff},
	{0x1000, 0x100},
	{0xfffff, 0xfffff},
	{0xffffffff, 0xffffffff},
}

// DevnumCase runs libc's makedev/major/minor on sample values and compares
// the results with package devnum. The glibc macros expand to function
// calls, so this cannot be a static assertion.
func DevnumCase() verify.RuntimeCase {
	return verify.RuntimeCase{
		Label: Devnum,
		Includes: cprog.IncludeSpec{
			Headers:   []string{"stdio.h", "sys/types.h", "sys/sysmacros.h"},
			GNUSource: true,
		},
		Body:  devnumBody,
		Check: checkDevnumOutput,
	}
}

func devnumBody(p *cprog.Program) {
	p.Raw("unsigned long long dev;")
	for _, s := range devSamples {
		maj, mn := fmt.Sprintf("%du", s.major), fmt.Sprintf("%du", s.minor)
		p.AddCall("dev", "gnu_dev_makedev", maj, mn)
		p.AddCall("", "printf", `"%u %u %llu %u %u\n"`, maj, mn, "dev", "gnu_dev_major(dev)", "gnu_dev_minor(dev)")
	}
}

func checkDevnumOutput(stdout string) error {
	sc := bufio.NewScanner(strings.NewReader(stdout))
	var problems []string
	n := 0
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var (
			maj, mn, gotMaj, gotMin uint32
			dev                     uint64
		)
		if _, err := fmt.Sscanf(line, "%d %d %d %d %d", &maj, &mn, &dev, &gotMaj, &gotMin); err != nil {
			return fmt.Errorf("unexpected output line %q: %w", line, err)
		}
		n++
		if want := devnum.Makedev(maj, mn); dev != want {
			problems = append(problems, fmt.Sprintf("makedev(%#x, %#x) = %#x, want %#x", maj, mn, dev, want))
		}
		if want := devnum.Major(dev); gotMaj != want {
			problems = append(problems, fmt.Sprintf("major(%#x) = %#x, want %#x", dev, gotMaj, want))
		}
		if want := devnum.Minor(dev); gotMin != want {
			problems = append(problems, fmt.Sprintf("minor(%#x) = %#x, want %#x", dev, gotMin, want))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if n != len(devSamples) {
		problems = append(problems, fmt.Sprintf("got %d samples, want %d", n, len(devSamples)))
	}
	if len(problems) > 0 {
		return fmt.Errorf("device number encoding differs from libc:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
