// Command uab-runtime is the self-extracting, self-mounting entrypoint
// embedded in a Universal Application Bundle.
package main

import (
	"os"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/uab"
)

func main() {
	uab.Run(os.Args[1:])
}
