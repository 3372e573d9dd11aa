// Provides platform-appropriate paths for the resolver.
//
// All paths follow XDG conventions on Linux and platform-native
// conventions on macOS and Windows. The tool name "adder" is used as the
// subdirectory under each base path.
package paths
