package gojassr

import (
	"fmt"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// goja has no TextEncoder, process or console; prepend small stand-ins
// so browser-targeted bundles evaluate.
// TextEncoder/TextDecoder from https://gist.github.com/Yaffle/5458286
//
//nolint:lll
const (
	textCodecPolyfill = `function TextEncoder(){} TextEncoder.prototype.encode=function(string){var octets=[],length=string.length,i=0;while(i<length){var codePoint=string.codePointAt(i),c=0,bits=0;codePoint<=0x7F?(c=0,bits=0x00):codePoint<=0x7FF?(c=6,bits=0xC0):codePoint<=0xFFFF?(c=12,bits=0xE0):codePoint<=0x1FFFFF&&(c=18,bits=0xF0),octets.push(bits|(codePoint>>c)),c-=6;while(c>=0){octets.push(0x80|((codePoint>>c)&0x3F)),c-=6}i+=codePoint>=0x10000?2:1}return octets};function TextDecoder(){} TextDecoder.prototype.decode=function(octets){var string="",i=0;while(i<octets.length){var octet=octets[i],bytesNeeded=0,codePoint=0;octet<=0x7F?(bytesNeeded=0,codePoint=octet&0xFF):octet<=0xDF?(bytesNeeded=1,codePoint=octet&0x1F):octet<=0xEF?(bytesNeeded=2,codePoint=octet&0x0F):octet<=0xF4&&(bytesNeeded=3,codePoint=octet&0x07),octets.length-i-bytesNeeded>0?function(){for(var k=0;k<bytesNeeded;){octet=octets[i+k+1],codePoint=(codePoint<<6)|(octet&0x3F),k+=1}}():codePoint=0xFFFD,bytesNeeded=octets.length-i,string+=String.fromCodePoint(codePoint),i+=bytesNeeded+1}return string};`
	processPolyfill = `var process = {env: {NODE_ENV: "production"}};`
	consolePolyfill = `var console = {log: function(){}, warn: function(){}, error: function(){}};`
)

// Bundle compiles the SSR entry point into a single self-contained
// script suitable for New: browser platform, IIFE format, ES2015 target,
// with the polyfills goja needs prepended.
func Bundle(entryPoint string) (string, error) {
	result := esbuild.Build(esbuild.BuildOptions{
		EntryPoints:       []string{entryPoint},
		Bundle:            true,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Write:             false,
		Outdir:            "/",
		Format:            esbuild.FormatIIFE,
		Platform:          esbuild.PlatformBrowser,
		Target:            esbuild.ES2015,
		Banner: map[string]string{
			"js": textCodecPolyfill + processPolyfill + consolePolyfill,
		},
		Loader: map[string]esbuild.Loader{
			".jsx": esbuild.LoaderJSX,
			".tsx": esbuild.LoaderTSX,
		},
	})

	if len(result.Errors) > 0 {
		return "", fmt.Errorf("gojassr: failed to bundle %s: %s", entryPoint, result.Errors[0].Text)
	}

	if len(result.OutputFiles) == 0 {
		return "", fmt.Errorf("gojassr: bundling %s produced no output", entryPoint)
	}

	return string(result.OutputFiles[0].Contents), nil
}
